package postgres

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/coban-api/internal/domain"
	"github.com/phrazzld/coban-api/internal/platform/logger"
	"github.com/phrazzld/coban-api/internal/store"
)

const (
	selectScoreQuery = `SELECT data FROM user_scores WHERE user_id = $1`

	upsertScoreQuery = `
		INSERT INTO user_scores (user_id, level, data, created_at, updated_at)
		VALUES ($1, $2, $3::jsonb, $4, $5)
		ON CONFLICT (user_id) DO UPDATE
		SET level = EXCLUDED.level,
			data = EXCLUDED.data,
			created_at = EXCLUDED.created_at,
			updated_at = EXCLUDED.updated_at
	`

	deleteScoreQuery = `DELETE FROM user_scores WHERE user_id = $1`
)

// PostgresScoreStore implements the store.ScoreStore interface
// using a PostgreSQL database as the storage backend.
type PostgresScoreStore struct {
	db     store.DBTX
	logger *slog.Logger
	now    func() time.Time
}

// NewPostgresScoreStore creates a new PostgreSQL implementation of the ScoreStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresScoreStore(db store.DBTX, logger *slog.Logger) *PostgresScoreStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresScoreStore{
		db:     db,
		logger: logger.With(slog.String("component", "score_store")),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

var _ store.ScoreStore = (*PostgresScoreStore)(nil)
var _ store.ScoreResetter = (*PostgresScoreStore)(nil)

// Get implements store.ScoreStore.Get.
// Returns store.ErrScoreNotFound if the user has no record.
func (s *PostgresScoreStore) Get(ctx context.Context, userID string) (*domain.UserScore, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var data []byte
	if err := s.db.QueryRowContext(ctx, selectScoreQuery, userID).Scan(&data); err != nil {
		mapped := MapError("get", err)
		if store.IsNotFoundError(mapped) {
			log.Debug("user score not found", slog.String("user_id", userID))
		} else {
			log.Error("failed to get user score",
				slog.String("error", err.Error()),
				slog.String("user_id", userID))
		}
		return nil, mapped
	}

	score, err := store.DecodeScore(data)
	if err != nil {
		log.Error("failed to decode user score",
			slog.String("error", err.Error()),
			slog.String("user_id", userID))
		return nil, err
	}
	return score, nil
}

// Put implements store.ScoreStore.Put.
// It replaces the whole document for userID, inserting it if absent.
func (s *PostgresScoreStore) Put(ctx context.Context, userID string, score *domain.UserScore) error {
	prepared, err := s.put(ctx, s.db, userID, score)
	if err != nil {
		return err
	}
	store.MarkWritten(score, prepared)
	return nil
}

// put writes score through db and returns the stamped copy it stored.
func (s *PostgresScoreStore) put(
	ctx context.Context,
	db store.DBTX,
	userID string,
	score *domain.UserScore,
) (*domain.UserScore, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	prepared, err := store.PrepareForPut(userID, score, s.now())
	if err != nil {
		log.Warn("user score validation failed during put",
			slog.String("error", err.Error()),
			slog.String("user_id", userID))
		return nil, err
	}

	data, err := store.EncodeScore(prepared)
	if err != nil {
		return nil, err
	}

	_, err = db.ExecContext(ctx, upsertScoreQuery,
		userID,
		string(prepared.Level),
		string(data),
		prepared.CreatedAt,
		prepared.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to save user score",
			slog.String("error", err.Error()),
			slog.String("user_id", userID))
		return nil, MapError("put", err)
	}

	log.Debug("user score saved",
		slog.String("user_id", userID),
		slog.Int("parents", len(prepared.Mastery)))
	return prepared, nil
}

// CreateDefault implements store.ScoreStore.CreateDefault.
func (s *PostgresScoreStore) CreateDefault(
	ctx context.Context,
	userID string,
	level domain.Level,
) (*domain.UserScore, error) {
	record, err := domain.NewUserScore(userID, level, s.now())
	if err != nil {
		return nil, store.NewStoreError(store.EntityUserScore, "create", "invalid default record", store.InvalidEntity(err))
	}
	return s.put(ctx, s.db, userID, record)
}

// Delete implements store.ScoreStore.Delete. Deleting a missing record is not an error.
func (s *PostgresScoreStore) Delete(ctx context.Context, userID string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, deleteScoreQuery, userID)
	if err != nil {
		log.Error("failed to delete user score",
			slog.String("error", err.Error()),
			slog.String("user_id", userID))
		return MapError("delete", err)
	}

	if rows, err := result.RowsAffected(); err == nil {
		log.Debug("user score deleted",
			slog.String("user_id", userID),
			slog.Int64("rows_affected", rows))
	}
	return nil
}

// Reset implements store.ScoreResetter. When the store wraps a *sql.DB the
// delete and insert run in one transaction; inside a caller's transaction
// they join it.
func (s *PostgresScoreStore) Reset(ctx context.Context, userID string, level domain.Level) (*domain.UserScore, error) {
	record, err := domain.NewUserScore(userID, level, s.now())
	if err != nil {
		return nil, store.NewStoreError(store.EntityUserScore, "reset", "invalid default record", store.InvalidEntity(err))
	}

	var stored *domain.UserScore
	reset := func(ctx context.Context, db store.DBTX) error {
		if _, err := db.ExecContext(ctx, deleteScoreQuery, userID); err != nil {
			return MapError("reset", err)
		}
		var putErr error
		stored, putErr = s.put(ctx, db, userID, record)
		return putErr
	}

	beginner, ok := s.db.(store.TxBeginner)
	if !ok {
		if err := reset(ctx, s.db); err != nil {
			return nil, err
		}
		return stored, nil
	}

	err = store.RunInTransaction(ctx, beginner, func(ctx context.Context, tx *sql.Tx) error {
		return reset(ctx, tx)
	})
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to reset user score",
			slog.String("error", err.Error()),
			slog.String("user_id", userID))
		return nil, err
	}
	return stored, nil
}

// Validate implements store.ScoreStore.Validate by writing, reading and
// deleting a throwaway record.
func (s *PostgresScoreStore) Validate(ctx context.Context) bool {
	log := logger.FromContextOrDefault(ctx, s.logger)
	key := store.ValidationKeyPrefix + uuid.NewString()

	if _, err := s.CreateDefault(ctx, key, domain.DefaultLevel); err != nil {
		log.Warn("score store validation write failed", slog.String("error", err.Error()))
		return false
	}
	defer func() {
		if err := s.Delete(ctx, key); err != nil {
			log.Warn("score store validation cleanup failed", slog.String("error", err.Error()))
		}
	}()

	if _, err := s.Get(ctx, key); err != nil {
		log.Warn("score store validation read failed", slog.String("error", err.Error()))
		return false
	}
	return true
}
