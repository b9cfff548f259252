// Package catalog keeps each user's books as records of the "books" collection.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"readinglog/internal/keylock"
	"readinglog/internal/models"
	"readinglog/internal/storage"
)

const booksCollection = "books"

// Catalog looks up and registers books
type Catalog struct {
	db      storage.Storage
	logger  *zap.Logger
	creates keylock.Locker[string] // serializes the duplicate check and insert per user
}

// New creates a catalog on top of the record storage
func New(db storage.Storage, logger *zap.Logger) *Catalog {
	return &Catalog{db: db, logger: logger}
}

// ListBooks returns the user's books in the order they were added
func (c *Catalog) ListBooks(ctx context.Context, user string) ([]models.Book, error) {
	records, err := c.db.ListRecords(ctx, user, booksCollection)
	if err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}

	books := make([]models.Book, 0, len(records))
	for _, record := range records {
		book, err := decodeBook(record)
		if err != nil {
			return nil, err
		}
		books = append(books, book)
	}
	return books, nil
}

// GetBook returns false when the user has no book with that uuid
func (c *Catalog) GetBook(ctx context.Context, user, bookUUID string) (models.Book, bool, error) {
	record, found, err := c.db.GetRecord(ctx, user, booksCollection, bookUUID)
	if err != nil {
		return models.Book{}, false, fmt.Errorf("failed to get book: %w", err)
	}
	if !found {
		return models.Book{}, false, nil
	}
	book, err := decodeBook(record)
	if err != nil {
		return models.Book{}, false, err
	}
	return book, true, nil
}

// CreateBook registers a new book and returns its uuid.
// A book sharing an ISBN with one of the user's books is rejected.
func (c *Catalog) CreateBook(ctx context.Context, user string, book models.Book) (string, error) {
	defer c.creates.Lock(user)()

	book.Title = strings.TrimSpace(book.Title)
	if book.Title == "" || book.PagesTotal < 1 {
		return "", ErrBookInvalid
	}

	existing, err := c.ListBooks(ctx, user)
	if err != nil {
		return "", err
	}
	for _, other := range existing {
		if sameISBN(book.ISBN10, other.ISBN10) || sameISBN(book.ISBN13, other.ISBN13) {
			c.logger.Debug("Book already exists",
				zap.String("user", user),
				zap.String("existing_uuid", other.UUID),
			)
			return "", ErrBookAlreadyExists
		}
	}

	book.UUID = ""
	data, err := json.Marshal(book)
	if err != nil {
		return "", fmt.Errorf("failed to encode book: %w", err)
	}

	id, err := c.db.CreateRecord(ctx, user, booksCollection, data)
	if err != nil {
		return "", fmt.Errorf("failed to create book: %w", err)
	}

	c.logger.Info("Book created",
		zap.String("user", user),
		zap.String("book_uuid", id),
		zap.String("title", book.Title),
		zap.Int("pages_total", book.PagesTotal),
	)
	return id, nil
}

func decodeBook(record storage.Record) (models.Book, error) {
	var book models.Book
	if err := json.Unmarshal(record.Data, &book); err != nil {
		return models.Book{}, fmt.Errorf("failed to decode book %s: %w", record.ID, err)
	}
	book.UUID = record.ID
	return book, nil
}

func sameISBN(a, b string) bool {
	return a != "" && a == b
}
