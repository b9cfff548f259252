package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"readinglog/internal/catalog"
	"readinglog/internal/models"
)

func (h *Handler) listBooks(c *gin.Context) {
	books, err := h.books.ListBooks(c.Request.Context(), c.Param("user"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, books)
}

func (h *Handler) getBook(c *gin.Context) {
	book, found, err := h.books.GetBook(c.Request.Context(), c.Param("user"), c.Param("book"))
	if err != nil {
		h.fail(c, err)
		return
	}
	if !found {
		h.fail(c, catalog.ErrBookNotFound)
		return
	}
	c.JSON(http.StatusOK, book)
}

func (h *Handler) createBook(c *gin.Context) {
	var book models.Book
	if err := c.ShouldBindJSON(&book); err != nil {
		h.fail(c, catalog.ErrBookInvalid)
		return
	}

	ctx := c.Request.Context()
	user := c.Param("user")
	id, err := h.books.CreateBook(ctx, user, book)
	if err != nil {
		h.fail(c, err)
		return
	}

	created, found, err := h.books.GetBook(ctx, user, id)
	if err != nil {
		h.fail(c, err)
		return
	}
	if !found {
		// Not readable yet (replica lag); answer with what was stored
		h.logger.Warn("Created book not found on read-back", zap.String("user", user), zap.String("book_uuid", id))
		created = book
		created.UUID = id
		created.Title = strings.TrimSpace(book.Title)
	}
	c.Header("Location", c.Request.URL.Path+"/"+id)
	c.JSON(http.StatusCreated, created)
}
