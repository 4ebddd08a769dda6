package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/phrazzld/coban-api/internal/config"
	"github.com/phrazzld/coban-api/internal/platform/memory"
	"github.com/phrazzld/coban-api/internal/platform/migrate"
	"github.com/phrazzld/coban-api/internal/platform/postgres"
	"github.com/phrazzld/coban-api/internal/platform/redis"
	"github.com/phrazzld/coban-api/internal/platform/sqlite"
	"github.com/phrazzld/coban-api/internal/redact"
	"github.com/phrazzld/coban-api/internal/store"
)

// connectTimeout bounds the initial connection to an external store.
const connectTimeout = 5 * time.Second

// openedStore is a score store plus whatever must be closed with it. Hand
// the embedded ScoreStore to consumers so optional interfaces stay visible.
type openedStore struct {
	store.ScoreStore
	close func() error
}

func (s openedStore) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

// openPostgres opens a pgx-backed pool and checks it is reachable.
func openPostgres(ctx context.Context, url string) (*sql.DB, error) {
	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

// openStore connects the configured score store. With migrateUp set, the
// postgres schema is migrated before use; sqlite always migrates on open.
func openStore(ctx context.Context, cfg config.StoreConfig, migrateUp bool, logger *slog.Logger) (openedStore, error) {
	log := logger.With(slog.String("store_driver", cfg.Driver))

	switch cfg.Driver {
	case config.DriverMemory:
		log.Warn("using in-memory score store; scores are lost on restart")
		return openedStore{ScoreStore: memory.NewScoreStore(logger)}, nil

	case config.DriverSQLite:
		db, err := sqlite.Open(ctx, cfg.SQLitePath, logger)
		if err != nil {
			return openedStore{}, err
		}
		log.Info("sqlite score store ready")
		return openedStore{ScoreStore: sqlite.NewScoreStore(db, logger), close: db.Close}, nil

	case config.DriverPostgres:
		db, err := openPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return openedStore{}, err
		}
		if migrateUp {
			runner, err := postgres.NewMigrationRunner(db, logger)
			if err == nil {
				err = runner.Up(ctx)
			}
			if err != nil {
				_ = db.Close()
				return openedStore{}, err
			}
		}
		log.Info("postgres score store ready")
		return openedStore{ScoreStore: postgres.NewPostgresScoreStore(db, logger), close: db.Close}, nil

	case config.DriverRedis:
		rdb, err := redis.Connect(ctx, redis.Options{
			Addr:        cfg.RedisAddr,
			Password:    cfg.RedisPassword,
			DB:          cfg.RedisDB,
			DialTimeout: connectTimeout,
		})
		if err != nil {
			return openedStore{}, err
		}
		log.Info("redis score store ready", slog.String("key_prefix", cfg.KeyPrefix))
		return openedStore{ScoreStore: redis.NewScoreStore(rdb, cfg.KeyPrefix, logger), close: rdb.Close}, nil
	}

	return openedStore{}, fmt.Errorf("unsupported store driver %q", cfg.Driver)
}

// openMigrationRunner returns a runner for the SQL drivers and a function
// that closes its connection.
func openMigrationRunner(ctx context.Context, cfg config.StoreConfig, logger *slog.Logger) (*migrate.Runner, func() error, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		db, err := openPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		runner, err := postgres.NewMigrationRunner(db, logger)
		if err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return runner, db.Close, nil

	case config.DriverSQLite:
		db, err := sqlite.Connect(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		runner, err := sqlite.NewMigrationRunner(db, logger)
		if err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return runner, db.Close, nil
	}
	return nil, nil, fmt.Errorf("store driver %q has no schema migrations", cfg.Driver)
}

// logStoreError logs err with connection details stripped.
func logStoreError(logger *slog.Logger, msg string, err error) {
	logger.Error(msg, slog.String("error", redact.Error(err)))
}
