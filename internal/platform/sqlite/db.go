// Package sqlite provides a store.ScoreStore backed by a local SQLite file,
// for single-node deployments and development. Records are stored as JSON
// text through sqlx.
package sqlite

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/phrazzld/coban-api/internal/platform/migrate"
	"github.com/pressly/goose/v3"
)

// DriverName is the database/sql driver registered by go-sqlite3.
const DriverName = "sqlite3"

//go:embed migrations/*.sql
var embeddedMigrations embed.FS

// Migrations returns the schema migrations for the score table.
func Migrations() fs.FS {
	sub, err := fs.Sub(embeddedMigrations, "migrations")
	if err != nil {
		// ALLOW-PANIC: the directory is embedded at compile time
		panic(err)
	}
	return sub
}

// NewMigrationRunner returns a goose runner for the SQLite schema.
func NewMigrationRunner(db *sqlx.DB, logger *slog.Logger) (*migrate.Runner, error) {
	return migrate.NewRunner(goose.DialectSQLite3, db.DB, Migrations(), logger)
}

// Open connects to the database file at path and applies pending migrations.
func Open(ctx context.Context, path string, logger *slog.Logger) (*sqlx.DB, error) {
	db, err := Connect(ctx, path)
	if err != nil {
		return nil, err
	}

	runner, err := NewMigrationRunner(db, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := runner.Up(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// Connect opens the database file at path, creating its directory if needed.
// The schema is left as it is.
func Connect(ctx context.Context, path string) (*sqlx.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	db, err := sqlx.ConnectContext(ctx, DriverName, path)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to sqlite database: %w", err)
	}

	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode = WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL journal: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout = 5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}
	return db, nil
}
