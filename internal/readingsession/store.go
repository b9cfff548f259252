package readingsession

import (
	"context"
	"encoding/json"
	"fmt"

	"readinglog/internal/models"
	"readinglog/internal/storage"
)

// Store persists reading sessions, one record per session, scoped to a user and a book.
// Lookups that miss report false instead of an error; no validation happens here.
type Store interface {
	List(ctx context.Context, user, bookUUID string) ([]models.ReadingSession, error)
	Get(ctx context.Context, user, bookUUID, sessionUUID string) (models.ReadingSession, bool, error)
	Create(ctx context.Context, user, bookUUID string, session models.ReadingSession) (string, error)
	Update(ctx context.Context, user, bookUUID string, session models.ReadingSession) error
	Delete(ctx context.Context, user, bookUUID, sessionUUID string) error
}

// RecordStore keeps reading sessions as JSON records of the generic storage
type RecordStore struct {
	db storage.Storage
}

// NewRecordStore creates a Store backed by the record storage
func NewRecordStore(db storage.Storage) *RecordStore {
	return &RecordStore{db: db}
}

func collection(bookUUID string) string {
	return "books/" + bookUUID + "/reading-sessions"
}

// List returns the sessions of a book in storage order
func (s *RecordStore) List(ctx context.Context, user, bookUUID string) ([]models.ReadingSession, error) {
	records, err := s.db.ListRecords(ctx, user, collection(bookUUID))
	if err != nil {
		return nil, fmt.Errorf("failed to list reading sessions: %w", err)
	}

	sessions := make([]models.ReadingSession, 0, len(records))
	for _, record := range records {
		session, err := decode(record, bookUUID)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	return sessions, nil
}

// Get returns a single session
func (s *RecordStore) Get(ctx context.Context, user, bookUUID, sessionUUID string) (models.ReadingSession, bool, error) {
	record, found, err := s.db.GetRecord(ctx, user, collection(bookUUID), sessionUUID)
	if err != nil {
		return models.ReadingSession{}, false, fmt.Errorf("failed to get reading session: %w", err)
	}
	if !found {
		return models.ReadingSession{}, false, nil
	}
	session, err := decode(record, bookUUID)
	if err != nil {
		return models.ReadingSession{}, false, err
	}
	return session, true, nil
}

// Create stores a session and returns the generated uuid
func (s *RecordStore) Create(ctx context.Context, user, bookUUID string, session models.ReadingSession) (string, error) {
	data, err := encode(session, bookUUID)
	if err != nil {
		return "", err
	}
	id, err := s.db.CreateRecord(ctx, user, collection(bookUUID), data)
	if err != nil {
		return "", fmt.Errorf("failed to create reading session: %w", err)
	}
	return id, nil
}

// Update replaces a stored session
func (s *RecordStore) Update(ctx context.Context, user, bookUUID string, session models.ReadingSession) error {
	data, err := encode(session, bookUUID)
	if err != nil {
		return err
	}
	if err := s.db.UpdateRecord(ctx, user, collection(bookUUID), session.UUID, data); err != nil {
		return fmt.Errorf("failed to update reading session: %w", err)
	}
	return nil
}

// Delete removes a stored session
func (s *RecordStore) Delete(ctx context.Context, user, bookUUID, sessionUUID string) error {
	if err := s.db.DeleteRecord(ctx, user, collection(bookUUID), sessionUUID); err != nil {
		return fmt.Errorf("failed to delete reading session: %w", err)
	}
	return nil
}

// The uuid is the record id, so it is not duplicated inside the payload
func encode(session models.ReadingSession, bookUUID string) ([]byte, error) {
	session.UUID = ""
	session.BookUUID = bookUUID
	if session.DateReadingSessions == nil {
		session.DateReadingSessions = []models.DateReadingSession{}
	}
	data, err := json.Marshal(session)
	if err != nil {
		return nil, fmt.Errorf("failed to encode reading session: %w", err)
	}
	return data, nil
}

func decode(record storage.Record, bookUUID string) (models.ReadingSession, error) {
	var session models.ReadingSession
	if err := json.Unmarshal(record.Data, &session); err != nil {
		return models.ReadingSession{}, fmt.Errorf("failed to decode reading session %s: %w", record.ID, err)
	}
	session.UUID = record.ID
	session.BookUUID = bookUUID
	if session.DateReadingSessions == nil {
		session.DateReadingSessions = []models.DateReadingSession{}
	}
	return session, nil
}
