package postgres

import (
	"database/sql"
	"embed"
	"io/fs"
	"log/slog"

	"github.com/phrazzld/coban-api/internal/platform/migrate"
	"github.com/pressly/goose/v3"
)

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

// NewMigrationRunner returns a goose runner for the PostgreSQL schema.
func NewMigrationRunner(db *sql.DB, logger *slog.Logger) (*migrate.Runner, error) {
	return migrate.NewRunner(goose.DialectPostgres, db, Migrations(), logger)
}
