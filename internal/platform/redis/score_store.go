// Package redis provides a store.ScoreStore that keeps each user's record as
// one JSON string under a prefixed key.
package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/coban-api/internal/domain"
	"github.com/phrazzld/coban-api/internal/platform/logger"
	"github.com/phrazzld/coban-api/internal/store"
	goredis "github.com/redis/go-redis/v9"
)

// DefaultKeyPrefix is used when no prefix is configured.
const DefaultKeyPrefix = "coban:score:"

// Options configures Connect.
type Options struct {
	Addr        string
	Password    string
	DB          int
	DialTimeout time.Duration
}

// Connect opens a client and pings it.
func Connect(ctx context.Context, opts Options) (*goredis.Client, error) {
	if opts.Addr == "" {
		return nil, fmt.Errorf("missing redis address")
	}
	if opts.DialTimeout <= 0 {
		opts.DialTimeout = 5 * time.Second
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        opts.Addr,
		Password:    opts.Password,
		DB:          opts.DB,
		DialTimeout: opts.DialTimeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, opts.DialTimeout)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

// ScoreStore implements store.ScoreStore on Redis.
type ScoreStore struct {
	rdb    goredis.Cmdable
	prefix string
	logger *slog.Logger
	now    func() time.Time
}

var _ store.ScoreStore = (*ScoreStore)(nil)
var _ store.ScoreResetter = (*ScoreStore)(nil)

// NewScoreStore wraps a client. An empty prefix falls back to DefaultKeyPrefix.
func NewScoreStore(rdb goredis.Cmdable, prefix string, logger *slog.Logger) *ScoreStore {
	if rdb == nil {
		panic("redis client cannot be nil")
	}
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ScoreStore{
		rdb:    rdb,
		prefix: prefix,
		logger: logger.With(slog.String("component", "redis_score_store")),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Key returns the Redis key holding userID's record.
func (s *ScoreStore) Key(userID string) string {
	return s.prefix + userID
}

// Get implements store.ScoreStore.
func (s *ScoreStore) Get(ctx context.Context, userID string) (*domain.UserScore, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	data, err := s.rdb.Get(ctx, s.Key(userID)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			log.Debug("user score not found", slog.String("user_id", userID))
			return nil, store.ErrScoreNotFound
		}
		log.Error("failed to get user score",
			slog.String("error", err.Error()),
			slog.String("user_id", userID))
		return nil, store.Unavailable(store.EntityUserScore, "get", err)
	}
	return store.DecodeScore(data)
}

// Put implements store.ScoreStore.
func (s *ScoreStore) Put(ctx context.Context, userID string, score *domain.UserScore) error {
	prepared, err := s.put(ctx, s.rdb, userID, score)
	if err != nil {
		return err
	}
	store.MarkWritten(score, prepared)
	return nil
}

func (s *ScoreStore) put(
	ctx context.Context,
	rdb goredis.Cmdable,
	userID string,
	score *domain.UserScore,
) (*domain.UserScore, error) {
	prepared, err := store.PrepareForPut(userID, score, s.now())
	if err != nil {
		return nil, err
	}
	data, err := store.EncodeScore(prepared)
	if err != nil {
		return nil, err
	}

	if err := rdb.Set(ctx, s.Key(userID), data, 0).Err(); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to save user score",
			slog.String("error", err.Error()),
			slog.String("user_id", userID))
		return nil, store.Unavailable(store.EntityUserScore, "put", err)
	}
	return prepared, nil
}

// CreateDefault implements store.ScoreStore.
func (s *ScoreStore) CreateDefault(ctx context.Context, userID string, level domain.Level) (*domain.UserScore, error) {
	record, err := domain.NewUserScore(userID, level, s.now())
	if err != nil {
		return nil, store.NewStoreError(store.EntityUserScore, "create", "invalid default record", store.InvalidEntity(err))
	}
	return s.put(ctx, s.rdb, userID, record)
}

// Delete implements store.ScoreStore.
func (s *ScoreStore) Delete(ctx context.Context, userID string) error {
	if err := s.rdb.Del(ctx, s.Key(userID)).Err(); err != nil {
		return store.Unavailable(store.EntityUserScore, "delete", err)
	}
	return nil
}

// Reset implements store.ScoreResetter. The delete and write are sent as one
// MULTI/EXEC block.
func (s *ScoreStore) Reset(ctx context.Context, userID string, level domain.Level) (*domain.UserScore, error) {
	record, err := domain.NewUserScore(userID, level, s.now())
	if err != nil {
		return nil, store.NewStoreError(store.EntityUserScore, "reset", "invalid default record", store.InvalidEntity(err))
	}

	var stored *domain.UserScore
	_, err = s.rdb.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Del(ctx, s.Key(userID))
		var putErr error
		stored, putErr = s.put(ctx, pipe, userID, record)
		return putErr
	})
	if err != nil {
		if errors.Is(err, store.ErrInvalidEntity) {
			return nil, err
		}
		return nil, store.Unavailable(store.EntityUserScore, "reset", err)
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
