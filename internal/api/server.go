// Package api exposes books and reading sessions over HTTP.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"readinglog/internal/models"
)

// Books is the book catalog used by the handlers
type Books interface {
	ListBooks(ctx context.Context, user string) ([]models.Book, error)
	GetBook(ctx context.Context, user, bookUUID string) (models.Book, bool, error)
	CreateBook(ctx context.Context, user string, book models.Book) (string, error)
}

// ReadingSessions is the reading-session service used by the handlers
type ReadingSessions interface {
	ListReadingSessions(ctx context.Context, user, bookUUID string) ([]models.ReadingSession, error)
	GetCurrentReadingSession(ctx context.Context, user, bookUUID string) ([]models.ReadingSession, error)
	CreateReadingSession(ctx context.Context, user, bookUUID string, requested models.ReadingSession) (models.ReadingSession, error)
	GetReadingSession(ctx context.Context, user, bookUUID, sessionUUID string) (models.ReadingSession, error)
	DeleteReadingSession(ctx context.Context, user, bookUUID, sessionUUID string) (string, error)
	CreateDateReadingSession(ctx context.Context, user, bookUUID, sessionUUID string, entry models.DateReadingSession) (models.DateReadingSession, error)
	GetDateReadingSession(ctx context.Context, user, bookUUID, sessionUUID, date string) (models.DateReadingSession, error)
	UpdateDateReadingSession(ctx context.Context, user, bookUUID, sessionUUID, date string, entry models.DateReadingSession) (string, error)
	DeleteDateReadingSession(ctx context.Context, user, bookUUID, sessionUUID, date string) (string, error)
	GetReadingSessionProgress(ctx context.Context, user, bookUUID, sessionUUID string) (models.ReadingSessionProgress, error)
}

// Handler serves the REST API
type Handler struct {
	books    Books
	sessions ReadingSessions
	logger   *zap.Logger
}

// NewHandler creates the REST handler
func NewHandler(books Books, sessions ReadingSessions, logger *zap.Logger) *Handler {
	return &Handler{
		books:    books,
		sessions: sessions,
		logger:   logger,
	}
}

// Router builds the gin engine with every route registered
func (h *Handler) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), h.requestLogger())

	r.GET("/health", func(c *gin.Context) { c.String(http.StatusOK, "OK") })

	books := r.Group("/users/:user/books")
	books.GET("", h.listBooks)
	books.POST("", h.createBook)
	books.GET("/:book", h.getBook)

	books.GET("/:book/reading-sessions", h.listReadingSessions)
	books.POST("/:book/reading-sessions", h.createReadingSession)
	books.GET("/:book/current-reading-session", h.getCurrentReadingSession)

	session := books.Group("/:book/reading-sessions/:session")
	session.GET("", h.getReadingSession)
	session.DELETE("", h.deleteReadingSession)
	session.GET("/progress", h.getReadingSessionProgress)

	session.POST("/date-reading-sessions", h.createDateReadingSession)
	session.GET("/date-reading-sessions/:date", h.getDateReadingSession)
	session.PUT("/date-reading-sessions/:date", h.updateDateReadingSession)
	session.DELETE("/date-reading-sessions/:date", h.deleteDateReadingSession)

	return r
}

func (h *Handler) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		h.logger.Debug("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}
