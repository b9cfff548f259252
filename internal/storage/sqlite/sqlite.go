package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"readinglog/internal/storage"
	"readinglog/migrations"
)

// SQLiteDB stores records in a single embedded database file
type SQLiteDB struct {
	db *sql.DB
}

// NewSQLiteDB opens (and creates if needed) the database file at path
func NewSQLiteDB(path string) (*SQLiteDB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", "file:"+path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}
	// A single writer keeps read-modify-write sequences serialized
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	return &SQLiteDB{db: db}, nil
}

// Initialize applies the embedded SQLite migrations
func (s *SQLiteDB) Initialize(ctx context.Context) error {
	return migrations.Up(ctx, s.db, goose.DialectSQLite3, migrations.SQLiteDir)
}

// ListRecords returns the records of a collection in insertion order
func (s *SQLiteDB) ListRecords(ctx context.Context, user, collection string) ([]storage.Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, data FROM records WHERE user_id = ? AND collection = ? ORDER BY seq`, user, collection)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	defer rows.Close()

	records := []storage.Record{}
	for rows.Next() {
		var id, data string
		if err := rows.Scan(&id, &data); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		records = append(records, storage.Record{ID: id, Data: []byte(data)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate records: %w", err)
	}
	return records, nil
}

// GetRecord returns a single record
func (s *SQLiteDB) GetRecord(ctx context.Context, user, collection, id string) (storage.Record, bool, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM records WHERE user_id = ? AND collection = ? AND id = ?`, user, collection, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.Record{}, false, nil
	}
	if err != nil {
		return storage.Record{}, false, fmt.Errorf("failed to get record: %w", err)
	}
	return storage.Record{ID: id, Data: []byte(data)}, true, nil
}

// CreateRecord inserts a record under a new UUID
func (s *SQLiteDB) CreateRecord(ctx context.Context, user, collection string, data []byte) (string, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO records (user_id, collection, id, data, seq)
		SELECT ?, ?, ?, ?, COALESCE(MAX(seq), 0) + 1 FROM records`,
		user, collection, id, string(data))
	if err != nil {
		return "", fmt.Errorf("failed to create record: %w", err)
	}
	return id, nil
}

// UpdateRecord replaces the data of an existing record
func (s *SQLiteDB) UpdateRecord(ctx context.Context, user, collection, id string, data []byte) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE records SET data = ? WHERE user_id = ? AND collection = ? AND id = ?`,
		string(data), user, collection, id)
	if err != nil {
		return fmt.Errorf("failed to update record: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update record: %w", err)
	}
	if affected == 0 {
		return storage.ErrRecordNotFound
	}
	return nil
}

// DeleteRecord removes a record if present
func (s *SQLiteDB) DeleteRecord(ctx context.Context, user, collection, id string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM records WHERE user_id = ? AND collection = ? AND id = ?`, user, collection, id)
	if err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	return nil
}

// Close closes the database
func (s *SQLiteDB) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
