package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"readinglog/internal/models"
	"readinglog/internal/readingsession"
)

func (h *Handler) listReadingSessions(c *gin.Context) {
	sessions, err := h.sessions.ListReadingSessions(c.Request.Context(), c.Param("user"), c.Param("book"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, sessions)
}

func (h *Handler) getCurrentReadingSession(c *gin.Context) {
	sessions, err := h.sessions.GetCurrentReadingSession(c.Request.Context(), c.Param("user"), c.Param("book"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, sessions)
}

func (h *Handler) createReadingSession(c *gin.Context) {
	var requested models.ReadingSession
	if err := c.ShouldBindJSON(&requested); err != nil {
		h.fail(c, readingsession.ErrReadingSessionInvalid)
		return
	}

	session, err := h.sessions.CreateReadingSession(c.Request.Context(), c.Param("user"), c.Param("book"), requested)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Header("Location", c.Request.URL.Path+"/"+session.UUID)
	c.JSON(http.StatusCreated, session)
}

func (h *Handler) getReadingSession(c *gin.Context) {
	session, err := h.sessions.GetReadingSession(c.Request.Context(), c.Param("user"), c.Param("book"), c.Param("session"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

func (h *Handler) deleteReadingSession(c *gin.Context) {
	id, err := h.sessions.DeleteReadingSession(c.Request.Context(), c.Param("user"), c.Param("book"), c.Param("session"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"uuid": id})
}

func (h *Handler) getReadingSessionProgress(c *gin.Context) {
	progress, err := h.sessions.GetReadingSessionProgress(c.Request.Context(), c.Param("user"), c.Param("book"), c.Param("session"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, progress)
}

func (h *Handler) createDateReadingSession(c *gin.Context) {
	var entry models.DateReadingSession
	if err := c.ShouldBindJSON(&entry); err != nil {
		h.fail(c, readingsession.ErrDateReadingSessionInvalid)
		return
	}

	created, err := h.sessions.CreateDateReadingSession(c.Request.Context(), c.Param("user"), c.Param("book"), c.Param("session"), entry)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Header("Location", c.Request.URL.Path+"/"+created.Date)
	c.JSON(http.StatusCreated, created)
}

func (h *Handler) getDateReadingSession(c *gin.Context) {
	entry, err := h.sessions.GetDateReadingSession(c.Request.Context(), c.Param("user"), c.Param("book"), c.Param("session"), c.Param("date"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (h *Handler) updateDateReadingSession(c *gin.Context) {
	var entry models.DateReadingSession
	if err := c.ShouldBindJSON(&entry); err != nil {
		h.fail(c, readingsession.ErrDateReadingSessionInvalid)
		return
	}

	date, err := h.sessions.UpdateDateReadingSession(c.Request.Context(), c.Param("user"), c.Param("book"), c.Param("session"), c.Param("date"), entry)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"date": date})
}

func (h *Handler) deleteDateReadingSession(c *gin.Context) {
	date, err := h.sessions.DeleteDateReadingSession(c.Request.Context(), c.Param("user"), c.Param("book"), c.Param("session"), c.Param("date"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"date": date})
}
