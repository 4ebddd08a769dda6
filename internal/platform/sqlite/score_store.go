package sqlite

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/coban-api/internal/domain"
	"github.com/phrazzld/coban-api/internal/platform/logger"
	"github.com/phrazzld/coban-api/internal/store"
)

const (
	selectScoreQuery = `SELECT data FROM user_scores WHERE user_id = ?`

	upsertScoreQuery = `
		INSERT INTO user_scores (user_id, level, data, created_at, updated_at)
		VALUES (:user_id, :level, :data, :created_at, :updated_at)
		ON CONFLICT (user_id) DO UPDATE
		SET level = excluded.level,
			data = excluded.data,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at
	`

	deleteScoreQuery = `DELETE FROM user_scores WHERE user_id = ?`
)

// scoreRow is the column layout of user_scores.
type scoreRow struct {
	UserID    string    `db:"user_id"`
	Level     string    `db:"level"`
	Data      string    `db:"data"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// execer is satisfied by *sqlx.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// ScoreStore implements store.ScoreStore on SQLite.
type ScoreStore struct {
	db     *sqlx.DB
	logger *slog.Logger
	now    func() time.Time
}

var _ store.ScoreStore = (*ScoreStore)(nil)
var _ store.ScoreResetter = (*ScoreStore)(nil)

// NewScoreStore wraps an open database. Use Open to create one with the
// schema applied.
func NewScoreStore(db *sqlx.DB, logger *slog.Logger) *ScoreStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ScoreStore{
		db:     db,
		logger: logger.With(slog.String("component", "sqlite_score_store")),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Get implements store.ScoreStore.
func (s *ScoreStore) Get(ctx context.Context, userID string) (*domain.UserScore, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var data []byte
	if err := s.db.GetContext(ctx, &data, selectScoreQuery, userID); err != nil {
		mapped := mapError("get", err)
		if store.IsNotFoundError(mapped) {
			log.Debug("user score not found", slog.String("user_id", userID))
		} else {
			log.Error("failed to get user score",
				slog.String("error", err.Error()),
				slog.String("user_id", userID))
		}
		return nil, mapped
	}
	return store.DecodeScore(data)
}

// Put implements store.ScoreStore.
func (s *ScoreStore) Put(ctx context.Context, userID string, score *domain.UserScore) error {
	prepared, err := s.put(ctx, s.db, userID, score)
	if err != nil {
		return err
	}
	store.MarkWritten(score, prepared)
	return nil
}

func (s *ScoreStore) put(ctx context.Context, db execer, userID string, score *domain.UserScore) (*domain.UserScore, error) {
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

	query, args, err := sqlx.Named(upsertScoreQuery, scoreRow{
		UserID:    userID,
		Level:     string(prepared.Level),
		Data:      string(data),
		CreatedAt: prepared.CreatedAt,
		UpdatedAt: prepared.UpdatedAt,
	})
	if err != nil {
		return nil, store.Unavailable(store.EntityUserScore, "put", err)
	}

	if _, err := db.ExecContext(ctx, query, args...); err != nil {
		log.Error("failed to save user score",
			slog.String("error", err.Error()),
			slog.String("user_id", userID))
		return nil, mapError("put", err)
	}
	return prepared, nil
}

// CreateDefault implements store.ScoreStore.
func (s *ScoreStore) CreateDefault(ctx context.Context, userID string, level domain.Level) (*domain.UserScore, error) {
	record, err := domain.NewUserScore(userID, level, s.now())
	if err != nil {
		return nil, store.NewStoreError(store.EntityUserScore, "create", "invalid default record", store.InvalidEntity(err))
	}
	return s.put(ctx, s.db, userID, record)
}

// Delete implements store.ScoreStore.
func (s *ScoreStore) Delete(ctx context.Context, userID string) error {
	if _, err := s.db.ExecContext(ctx, deleteScoreQuery, userID); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to delete user score",
			slog.String("error", err.Error()),
			slog.String("user_id", userID))
		return mapError("delete", err)
	}
	return nil
}

// Reset implements store.ScoreResetter in a single transaction.
func (s *ScoreStore) Reset(ctx context.Context, userID string, level domain.Level) (*domain.UserScore, error) {
	record, err := domain.NewUserScore(userID, level, s.now())
	if err != nil {
		return nil, store.NewStoreError(store.EntityUserScore, "reset", "invalid default record", store.InvalidEntity(err))
	}

	var stored *domain.UserScore
	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, deleteScoreQuery, userID); err != nil {
			return mapError("reset", err)
		}
		var putErr error
		stored, putErr = s.put(ctx, tx, userID, record)
		return putErr
	})
	if err != nil {
		return nil, err
	}
	return stored, nil
}

// Validate implements store.ScoreStore.
func (s *ScoreStore) Validate(ctx context.Context) bool {
	log := logger.FromContextOrDefault(ctx, s.logger)
	key := store.ValidationKeyPrefix + uuid.NewString()

	if _, err := s.CreateDefault(ctx, key, domain.DefaultLevel); err != nil {
		log.Warn("score store validation write failed", slog.String("error", err.Error()))
		return false
	}
	defer func() { _ = s.Delete(ctx, key) }()

	if _, err := s.Get(ctx, key); err != nil {
		log.Warn("score store validation read failed", slog.String("error", err.Error()))
		return false
	}
	return true
}
