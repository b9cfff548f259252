package ch

import (
	"context"
	"crypto/tls"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/google/uuid"
	"github.com/pressly/goose/v3"

	"readinglog/internal/storage"
	"readinglog/migrations"
)

// ClickHouseDB stores records in a ReplacingMergeTree table.
// Updates and deletes insert a newer version of the row; reads use FINAL.
type ClickHouseDB struct {
	conn    clickhouse.Conn
	options *clickhouse.Options
}

// NewClickHouseDB creates a new ClickHouse database connection
func NewClickHouseDB(host string, port int, database, user, password string, useTLS bool) (*ClickHouseDB, error) {
	addr := fmt.Sprintf("%s:%d", host, port)

	options := &clickhouse.Options{
		Addr:     []string{addr},
		Protocol: clickhouse.Native,
		Auth: clickhouse.Auth{
			Database: database,
			Username: user,
			Password: password,
		},
	}

	// Configure TLS if enabled
	if useTLS {
		options.TLS = &tls.Config{
			InsecureSkipVerify: false,
		}
	}

	conn, err := clickhouse.Open(options)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}

	// Test the connection
	if err := conn.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ping ClickHouse: %w", err)
	}

	return &ClickHouseDB{conn: conn, options: options}, nil
}

// Initialize applies the embedded ClickHouse migrations
func (db *ClickHouseDB) Initialize(ctx context.Context) error {
	sqlDB := clickhouse.OpenDB(db.options)
	defer sqlDB.Close()

	return migrations.Up(ctx, sqlDB, goose.DialectClickHouse, migrations.ClickHouseDir)
}

// ListRecords returns the live records of a collection in creation order
func (db *ClickHouseDB) ListRecords(ctx context.Context, user, collection string) ([]storage.Record, error) {
	rows, err := db.conn.Query(ctx, `
		SELECT id, data
		FROM records FINAL
		WHERE user_id = ? AND collection = ? AND is_deleted = 0
		ORDER BY created_at, id`, user, collection)
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

// GetRecord returns a single live record
func (db *ClickHouseDB) GetRecord(ctx context.Context, user, collection, id string) (storage.Record, bool, error) {
	var data string
	err := db.conn.QueryRow(ctx, `
		SELECT data
		FROM records FINAL
		WHERE user_id = ? AND collection = ? AND id = ? AND is_deleted = 0`, user, collection, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.Record{}, false, nil
	}
	if err != nil {
		return storage.Record{}, false, fmt.Errorf("failed to get record: %w", err)
	}
	return storage.Record{ID: id, Data: []byte(data)}, true, nil
}

// CreateRecord inserts a record under a new UUID
func (db *ClickHouseDB) CreateRecord(ctx context.Context, user, collection string, data []byte) (string, error) {
	id := uuid.NewString()
	now := time.Now().UTC()
	if err := db.insert(ctx, user, collection, id, string(data), now, false); err != nil {
		return "", fmt.Errorf("failed to create record: %w", err)
	}
	return id, nil
}

// UpdateRecord inserts a newer version of an existing record
func (db *ClickHouseDB) UpdateRecord(ctx context.Context, user, collection, id string, data []byte) error {
	createdAt, found, err := db.createdAt(ctx, user, collection, id)
	if err != nil {
		return fmt.Errorf("failed to update record: %w", err)
	}
	if !found {
		return storage.ErrRecordNotFound
	}
	if err := db.insert(ctx, user, collection, id, string(data), createdAt, false); err != nil {
		return fmt.Errorf("failed to update record: %w", err)
	}
	return nil
}

// DeleteRecord inserts a tombstone for an existing record
func (db *ClickHouseDB) DeleteRecord(ctx context.Context, user, collection, id string) error {
	createdAt, found, err := db.createdAt(ctx, user, collection, id)
	if err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	if !found {
		return nil
	}
	if err := db.insert(ctx, user, collection, id, "", createdAt, true); err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	return nil
}

// Close closes the database connection
func (db *ClickHouseDB) Close() error {
	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}

func (db *ClickHouseDB) insert(ctx context.Context, user, collection, id, data string, createdAt time.Time, deleted bool) error {
	var isDeleted uint8
	if deleted {
		isDeleted = 1
	}
	return db.conn.Exec(ctx, `
		INSERT INTO records (user_id, collection, id, data, created_at, version, is_deleted)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		user, collection, id, data, createdAt, uint64(time.Now().UnixNano()), isDeleted)
}

func (db *ClickHouseDB) createdAt(ctx context.Context, user, collection, id string) (time.Time, bool, error) {
	var createdAt time.Time
	err := db.conn.QueryRow(ctx, `
		SELECT created_at
		FROM records FINAL
		WHERE user_id = ? AND collection = ? AND id = ? AND is_deleted = 0`, user, collection, id).Scan(&createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	return createdAt, true, nil
}
