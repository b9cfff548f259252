package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"readinglog/internal/catalog"
	"readinglog/internal/readingsession"
)

const reasonInternalError = "INTERNAL_ERROR"

// errorResponse is the body of every failed request
type errorResponse struct {
	Reason string `json:"reason"`
}

// statusFor maps a reason code to an HTTP status by its suffix
func statusFor(reason string) int {
	switch {
	case strings.HasSuffix(reason, "_NOT_FOUND"):
		return http.StatusNotFound
	case strings.HasSuffix(reason, "_ALREADY_EXISTS"):
		return http.StatusForbidden
	case strings.HasSuffix(reason, "_INVALID"):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func reasonOf(err error) (string, bool) {
	var bookErr *catalog.Error
	if errors.As(err, &bookErr) {
		return string(bookErr.Reason), true
	}
	var sessionErr *readingsession.Error
	if errors.As(err, &sessionErr) {
		return string(sessionErr.Reason), true
	}
	return "", false
}

func (h *Handler) fail(c *gin.Context, err error) {
	reason, ok := reasonOf(err)
	if !ok {
		h.logger.Error("Request failed",
			zap.Error(err),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, errorResponse{Reason: reasonInternalError})
		return
	}
	c.AbortWithStatusJSON(statusFor(reason), errorResponse{Reason: reason})
}
