package storage

import (
	"context"
	"errors"
)

// ErrRecordNotFound is returned by UpdateRecord when the id does not exist
var ErrRecordNotFound = errors.New("record not found")

// Record is a JSON document stored under a generated identifier
type Record struct {
	ID   string
	Data []byte
}

// Storage defines a per-user collection of JSON records.
// Collections are opaque names chosen by the caller; records of one user are never visible to another.
type Storage interface {
	// ListRecords returns the records of a collection in insertion order
	ListRecords(ctx context.Context, user, collection string) ([]Record, error)

	// GetRecord returns false when the record does not exist
	GetRecord(ctx context.Context, user, collection, id string) (Record, bool, error)

	// CreateRecord stores data under a freshly generated identifier and returns it
	CreateRecord(ctx context.Context, user, collection string, data []byte) (string, error)

	// UpdateRecord replaces the data of an existing record
	UpdateRecord(ctx context.Context, user, collection, id string, data []byte) error

	// DeleteRecord removes a record; deleting a missing record is not an error
	DeleteRecord(ctx context.Context, user, collection, id string) error

	// Lifecycle
	Initialize(ctx context.Context) error
	Close() error
}
