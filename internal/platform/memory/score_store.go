// Package memory provides an in-process store.ScoreStore for tests and
// ephemeral development servers.
package memory

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/phrazzld/coban-api/internal/domain"
	"github.com/phrazzld/coban-api/internal/platform/logger"
	"github.com/phrazzld/coban-api/internal/store"
)

// ScoreStore keeps score records in a map guarded by a mutex. Records are
// cloned on the way in and out.
type ScoreStore struct {
	mu      sync.RWMutex
	records map[string]*domain.UserScore
	logger  *slog.Logger
	now     func() time.Time
}

var _ store.ScoreStore = (*ScoreStore)(nil)
var _ store.ScoreResetter = (*ScoreStore)(nil)

// NewScoreStore creates an empty store.
func NewScoreStore(logger *slog.Logger) *ScoreStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &ScoreStore{
		records: make(map[string]*domain.UserScore),
		logger:  logger.With(slog.String("component", "memory_score_store")),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Get implements store.ScoreStore.
func (s *ScoreStore) Get(ctx context.Context, userID string) (*domain.UserScore, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[userID]
	if !ok {
		logger.FromContextOrDefault(ctx, s.logger).Debug("user score not found",
			slog.String("user_id", userID))
		return nil, store.ErrScoreNotFound
	}
	return record.Clone(), nil
}

// Put implements store.ScoreStore.
func (s *ScoreStore) Put(ctx context.Context, userID string, score *domain.UserScore) error {
	prepared, err := store.PrepareForPut(userID, score, s.now())
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.records[userID] = prepared
	s.mu.Unlock()
	store.MarkWritten(score, prepared)

	logger.FromContextOrDefault(ctx, s.logger).Debug("user score saved",
		slog.String("user_id", userID),
		slog.Int("parents", len(prepared.Mastery)))
	return nil
}

// CreateDefault implements store.ScoreStore.
func (s *ScoreStore) CreateDefault(ctx context.Context, userID string, level domain.Level) (*domain.UserScore, error) {
	record, err := domain.NewUserScore(userID, level, s.now())
	if err != nil {
		return nil, store.NewStoreError(store.EntityUserScore, "create", "invalid default record", store.InvalidEntity(err))
	}
	if err := s.Put(ctx, userID, record); err != nil {
		return nil, err
	}
	return s.Get(ctx, userID)
}

// Delete implements store.ScoreStore.
func (s *ScoreStore) Delete(_ context.Context, userID string) error {
	s.mu.Lock()
	delete(s.records, userID)
	s.mu.Unlock()
	return nil
}

// Reset implements store.ScoreResetter.
func (s *ScoreStore) Reset(ctx context.Context, userID string, level domain.Level) (*domain.UserScore, error) {
	record, err := domain.NewUserScore(userID, level, s.now())
	if err != nil {
		return nil, store.NewStoreError(store.EntityUserScore, "reset", "invalid default record", store.InvalidEntity(err))
	}

	s.mu.Lock()
	s.records[userID] = record
	s.mu.Unlock()

	logger.FromContextOrDefault(ctx, s.logger).Debug("user score reset",
		slog.String("user_id", userID))
	return record.Clone(), nil
}

// Validate implements store.ScoreStore. The map is always reachable.
func (s *ScoreStore) Validate(context.Context) bool {
	return true
}

// Len returns the number of stored records.
func (s *ScoreStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
