// Package migrate runs embedded goose migrations against a *sql.DB. The
// postgres and sqlite adapters each ship their own migration set and hand it
// to a Runner.
package migrate

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/pressly/goose/v3"
)

// Command names accepted by Runner.Run.
const (
	CommandUp      = "up"
	CommandDown    = "down"
	CommandReset   = "reset"
	CommandStatus  = "status"
	CommandVersion = "version"
)

// Commands lists every command Run understands.
var Commands = []string{CommandUp, CommandDown, CommandReset, CommandStatus, CommandVersion}

// Runner applies one migration set to one database.
type Runner struct {
	provider *goose.Provider
	logger   *slog.Logger
}

// NewRunner builds a Runner. fsys must hold the .sql files at its root.
func NewRunner(dialect goose.Dialect, db *sql.DB, fsys fs.FS, logger *slog.Logger) (*Runner, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "migrations"), slog.String("dialect", string(dialect)))

	provider, err := goose.NewProvider(dialect, db, fsys,
		goose.WithLogger(&slogGooseLogger{logger: logger}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create migration provider: %w", err)
	}
	return &Runner{provider: provider, logger: logger}, nil
}

// Up applies every pending migration.
func (r *Runner) Up(ctx context.Context) error {
	return r.Run(ctx, CommandUp)
}

// Run executes one of Commands.
func (r *Runner) Run(ctx context.Context, command string) error {
	start := time.Now()
	log := r.logger.With(slog.String("command", command))
	log.Info("starting migration operation")

	var err error
	switch command {
	case CommandUp:
		var results []*goose.MigrationResult
		results, err = r.provider.Up(ctx)
		r.logResults(log, results)
	case CommandDown:
		var result *goose.MigrationResult
		result, err = r.provider.Down(ctx)
		if result != nil {
			r.logResults(log, []*goose.MigrationResult{result})
		}
	case CommandReset:
		var results []*goose.MigrationResult
		results, err = r.provider.DownTo(ctx, 0)
		r.logResults(log, results)
	case CommandStatus:
		err = r.logStatus(ctx, log)
	case CommandVersion:
		var version int64
		version, err = r.provider.GetDBVersion(ctx)
		if err == nil {
			log.Info("current database migration version", slog.Int64("version", version))
		}
	default:
		return fmt.Errorf("unknown migration command: %s (expected one of %v)", command, Commands)
	}

	if err != nil {
		log.Error("migration operation failed",
			slog.String("error", err.Error()),
			slog.Int64("duration_ms", time.Since(start).Milliseconds()))
		return fmt.Errorf("migration %s failed: %w", command, err)
	}
	log.Info("migration operation completed",
		slog.Int64("duration_ms", time.Since(start).Milliseconds()))
	return nil
}

// Version returns the current database version, 0 for a clean database.
func (r *Runner) Version(ctx context.Context) (int64, error) {
	return r.provider.GetDBVersion(ctx)
}

func (r *Runner) logResults(log *slog.Logger, results []*goose.MigrationResult) {
	if len(results) == 0 {
		log.Info("no migrations to apply")
		return
	}
	for _, res := range results {
		if res == nil || res.Source == nil {
			continue
		}
		log.Info("migration applied",
			slog.Int64("version", res.Source.Version),
			slog.String("path", res.Source.Path),
			slog.String("direction", res.Direction),
			slog.Int64("duration_ms", res.Duration.Milliseconds()))
	}
}

func (r *Runner) logStatus(ctx context.Context, log *slog.Logger) error {
	statuses, err := r.provider.Status(ctx)
	if err != nil {
		return err
	}
	for _, st := range statuses {
		attrs := []any{
			slog.Int64("version", st.Source.Version),
			slog.String("path", st.Source.Path),
			slog.String("state", string(st.State)),
		}
		if !st.AppliedAt.IsZero() {
			attrs = append(attrs, slog.Time("applied_at", st.AppliedAt))
		}
		log.Info("migration status", attrs...)
	}
	return nil
}

// slogGooseLogger adapts the goose logger interface to slog.
type slogGooseLogger struct {
	logger *slog.Logger
}

func (l *slogGooseLogger) Printf(format string, v ...interface{}) {
	l.logger.Info(fmt.Sprintf(format, v...))
}

// Fatalf logs at error level and does NOT exit; the caller gets the error back.
func (l *slogGooseLogger) Fatalf(format string, v ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, v...))
}
