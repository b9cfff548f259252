package stubs

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"readinglog/internal/storage"
)

type collectionKey struct {
	user       string
	collection string
}

// collection keeps records in insertion order
type collection struct {
	ids     []string
	records map[string][]byte
}

// MockDB is an in-memory implementation of the Storage interface for testing
type MockDB struct {
	mu          sync.RWMutex
	collections map[collectionKey]*collection
	newID       func() string
}

// NewMockDB creates a new mock database
func NewMockDB() *MockDB {
	return &MockDB{
		collections: make(map[collectionKey]*collection),
		newID:       uuid.NewString,
	}
}

// Initialize does nothing for mock DB
func (m *MockDB) Initialize(ctx context.Context) error {
	return nil
}

// ListRecords returns all records of a collection in insertion order
func (m *MockDB) ListRecords(ctx context.Context, user, name string) ([]storage.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.collections[collectionKey{user, name}]
	if !ok {
		return []storage.Record{}, nil
	}

	records := make([]storage.Record, 0, len(c.ids))
	for _, id := range c.ids {
		records = append(records, storage.Record{ID: id, Data: clone(c.records[id])})
	}
	return records, nil
}

// GetRecord returns a single record
func (m *MockDB) GetRecord(ctx context.Context, user, name, id string) (storage.Record, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.collections[collectionKey{user, name}]
	if !ok {
		return storage.Record{}, false, nil
	}
	data, ok := c.records[id]
	if !ok {
		return storage.Record{}, false, nil
	}
	return storage.Record{ID: id, Data: clone(data)}, true, nil
}

// CreateRecord stores a record under a new UUID
func (m *MockDB) CreateRecord(ctx context.Context, user, name string, data []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := collectionKey{user, name}
	c, ok := m.collections[key]
	if !ok {
		c = &collection{records: make(map[string][]byte)}
		m.collections[key] = c
	}

	id := m.newID()
	c.ids = append(c.ids, id)
	c.records[id] = clone(data)
	return id, nil
}

// UpdateRecord replaces the data of an existing record
func (m *MockDB) UpdateRecord(ctx context.Context, user, name, id string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.collections[collectionKey{user, name}]
	if !ok {
		return storage.ErrRecordNotFound
	}
	if _, ok := c.records[id]; !ok {
		return storage.ErrRecordNotFound
	}
	c.records[id] = clone(data)
	return nil
}

// DeleteRecord removes a record if present
func (m *MockDB) DeleteRecord(ctx context.Context, user, name, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.collections[collectionKey{user, name}]
	if !ok {
		return nil
	}
	if _, ok := c.records[id]; !ok {
		return nil
	}
	delete(c.records, id)
	for i, existing := range c.ids {
		if existing == id {
			c.ids = append(c.ids[:i], c.ids[i+1:]...)
			break
		}
	}
	return nil
}

// Close does nothing for mock DB
func (m *MockDB) Close() error {
	return nil
}

func clone(data []byte) []byte {
	if data == nil {
		return nil
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out
}
