// Package migrations embeds the goose SQL migrations of every storage backend.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
)

// FS holds one directory of migrations per goose dialect
//
//go:embed clickhouse/*.sql sqlite/*.sql
var FS embed.FS

const (
	ClickHouseDir = "clickhouse"
	SQLiteDir     = "sqlite"
)

// NewProvider returns a goose provider over the embedded migrations in dir
func NewProvider(db *sql.DB, dialect goose.Dialect, dir string) (*goose.Provider, error) {
	fsys, err := fs.Sub(FS, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open migrations directory %s: %w", dir, err)
	}
	provider, err := goose.NewProvider(dialect, db, fsys)
	if err != nil {
		return nil, fmt.Errorf("failed to create migration provider: %w", err)
	}
	return provider, nil
}

// Up applies every pending migration in dir
func Up(ctx context.Context, db *sql.DB, dialect goose.Dialect, dir string) error {
	provider, err := NewProvider(db, dialect, dir)
	if err != nil {
		return err
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}
