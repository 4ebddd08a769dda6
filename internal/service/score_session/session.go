package score_session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/phrazzld/coban-api/internal/domain"
	"github.com/phrazzld/coban-api/internal/domain/mastery"
	"github.com/phrazzld/coban-api/internal/events"
	"github.com/phrazzld/coban-api/internal/platform/logger"
	"github.com/phrazzld/coban-api/internal/store"
	"github.com/samber/lo"
)

// Session holds one user's score record and keeps it in step with the store.
// It is safe for concurrent use; writes are serialised so two result batches
// for the same user never clobber each other.
type Session struct {
	mu sync.RWMutex

	store   store.ScoreStore
	calc    mastery.Service
	catalog ContentCatalog
	emitter events.EventEmitter
	logger  *slog.Logger
	now     func() time.Time

	userID  string
	level   domain.Level
	current *domain.UserScore
	lastErr error
}

// Option configures a Session.
type Option func(*Session)

// WithCatalog makes the session validate results against lesson content.
func WithCatalog(c ContentCatalog) Option {
	return func(s *Session) { s.catalog = c }
}

// WithEmitter sets the emitter that receives score events.
func WithEmitter(e events.EventEmitter) Option {
	return func(s *Session) { s.emitter = e }
}

// WithMasteryService replaces the default calculator.
func WithMasteryService(calc mastery.Service) Option {
	return func(s *Session) { s.calc = calc }
}

// WithLogger sets the component logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// WithClock sets the time source used for lastSeen stamps.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// NewSession creates an uninitialised session over scoreStore.
func NewSession(scoreStore store.ScoreStore, opts ...Option) *Session {
	if scoreStore == nil {
		panic("score store cannot be nil")
	}
	s := &Session{
		store: scoreStore,
		calc:  mastery.NewDefaultService(),
		now:   func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.logger = s.logger.With(slog.String("component", "score_session"))
	return s
}

// Initialize loads userID's record, creating an empty one on first use.
// Calling it again re-reads the record. On failure the cached record is
// cleared and the error is also reported by Err.
func (s *Session) Initialize(ctx context.Context, userID string, level domain.Level) error {
	if userID == "" {
		return &ServiceError{Operation: opInitialize, Message: "invalid user", Err: domain.ErrEmptyUserID}
	}
	if level == "" {
		level = domain.DefaultLevel
	}
	if !level.Valid() {
		return &ServiceError{Operation: opInitialize, Message: "invalid level", Err: domain.ErrInvalidLevel}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.userID = userID
	s.level = level
	return s.load(ctx)
}

// Refresh re-reads the cached record from the store.
func (s *Session) Refresh(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.userID == "" {
		return ErrNotInitialized
	}
	return s.load(ctx)
}

// load fetches or creates the record for s.userID. Callers hold s.mu.
func (s *Session) load(ctx context.Context) error {
	log := logger.FromContextOrDefault(ctx, s.logger).With(slog.String("user_id", s.userID))

	record, err := s.store.Get(ctx, s.userID)
	if store.IsNotFoundError(err) {
		log.Info("no score record found, creating default", slog.String("level", string(s.level)))
		record, err = s.store.CreateDefault(ctx, s.userID, s.level)
	}
	if err != nil {
		log.Error("failed to load user score", slog.String("error", err.Error()))
		s.current = nil
		return s.fail(storageError(opInitialize, "failed to load user score", err))
	}

	s.current = record
	s.level = record.Level
	s.lastErr = nil
	log.Debug("user score loaded", slog.Int("parents", len(record.Mastery)))
	return nil
}

// RecordResults folds a batch of results into the record and persists it
// with a single write. Results are grouped by parent in order of first
// appearance; each parent is recomputed once after all of its words are
// updated. The cache is replaced only after the write succeeds.
func (s *Session) RecordResults(ctx context.Context, results []domain.ExerciseResult) error {
	if len(results) == 0 {
		return nil
	}
	if err := s.validateBatch(results); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return ErrNotInitialized
	}
	log := logger.FromContextOrDefault(ctx, s.logger).With(slog.String("user_id", s.userID))

	working := s.current.Clone()
	now := s.now()
	byParent := lo.GroupBy(results, func(r domain.ExerciseResult) string { return r.ParentID })
	parentIDs := lo.Uniq(lo.Map(results, func(r domain.ExerciseResult, _ int) string { return r.ParentID }))

	for _, parentID := range parentIDs {
		parent, err := s.foldParent(working.Mastery[parentID], parentID, byParent[parentID], now)
		if err != nil {
			return batchError("failed to apply results", err)
		}
		working.Mastery[parentID] = parent
	}

	if err := s.store.Put(ctx, s.userID, working); err != nil {
		log.Error("failed to save exercise results",
			slog.String("error", err.Error()),
			slog.Int("result_count", len(results)))
		return s.fail(storageError(opRecordResults, "failed to save results", err))
	}

	s.current = working
	s.lastErr = nil
	log.Info("exercise results recorded",
		slog.Int("result_count", len(results)),
		slog.Int("parent_count", len(parentIDs)))

	s.emit(ctx, events.TypeResultsRecorded, events.ResultsRecordedPayload{
		ParentIDs:       parentIDs,
		ResultCount:     len(results),
		OverallProgress: s.calc.UserProgressPercent(working),
	})
	return nil
}

// foldParent ensures every referenced word exists, applies each result
// against the parent's current word count and recomputes the parent once.
func (s *Session) foldParent(
	parent *domain.ParentMastery,
	parentID string,
	results []domain.ExerciseResult,
	now time.Time,
) (*domain.ParentMastery, error) {
	if parent == nil {
		parent = domain.NewParentMastery(parentID)
	}
	for _, r := range results {
		if _, ok := parent.Words[r.WordID]; !ok {
			parent.Words[r.WordID] = domain.NewWordMastery(r.WordID, parentID)
		}
	}

	total := parent.WordCount()
	for _, r := range results {
		updated, err := s.calc.ApplyResult(parent.Words[r.WordID], r, total, now)
		if err != nil {
			return nil, err
		}
		parent.Words[r.WordID] = updated
	}
	return s.calc.RecomputeParent(parent)
}

func (s *Session) validateBatch(results []domain.ExerciseResult) error {
	for i, r := range results {
		if err := r.Validate(); err != nil {
			return batchError("malformed result", errors.Join(err, indexError(i)))
		}
		if s.catalog != nil && !hasWord(s.catalog, r.ParentID, r.WordID) {
			return batchError("unknown content",
				errors.Join(errUnknownWord(r.ParentID, r.WordID), indexError(i)))
		}
	}
	return nil
}

// Reset deletes the stored record and replaces it with an empty one at the
// session's level.
func (s *Session) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.userID == "" {
		return ErrNotInitialized
	}
	log := logger.FromContextOrDefault(ctx, s.logger).With(slog.String("user_id", s.userID))

	var (
		fresh *domain.UserScore
		err   error
	)
	if resetter, ok := s.store.(store.ScoreResetter); ok {
		fresh, err = resetter.Reset(ctx, s.userID, s.level)
	} else if err = s.store.Delete(ctx, s.userID); err == nil {
		fresh, err = s.store.CreateDefault(ctx, s.userID, s.level)
	}
	if err != nil {
		log.Error("failed to reset user score", slog.String("error", err.Error()))
		s.current = nil
		return s.fail(storageError(opReset, "failed to reset user score", err))
	}

	s.current = fresh
	s.lastErr = nil
	log.Info("user score reset", slog.String("level", string(s.level)))
	s.emit(ctx, events.TypeScoreReset, events.ScoreResetPayload{Level: string(s.level)})
	return nil
}

// ResetParents removes the given parents from the record and persists it.
// Unknown IDs are ignored. It returns the IDs that were removed.
func (s *Session) ResetParents(ctx context.Context, parentIDs ...string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return nil, ErrNotInitialized
	}

	removed := lo.Filter(lo.Uniq(parentIDs), func(id string, _ int) bool {
		_, ok := s.current.Mastery[id]
		return ok
	})
	if len(removed) == 0 {
		return []string{}, nil
	}

	working := s.current.Clone()
	for _, id := range removed {
		delete(working.Mastery, id)
	}

	log := logger.FromContextOrDefault(ctx, s.logger).With(slog.String("user_id", s.userID))
	if err := s.store.Put(ctx, s.userID, working); err != nil {
		log.Error("failed to reset parents", slog.String("error", err.Error()))
		return nil, s.fail(storageError(opResetParents, "failed to save user score", err))
	}

	s.current = working
	s.lastErr = nil
	log.Info("parents reset", slog.Any("parent_ids", removed))
	s.emit(ctx, events.TypeScoreReset, events.ScoreResetPayload{Level: string(s.level), ParentIDs: removed})
	return removed, nil
}

// Err returns the most recent storage failure, or nil once an operation has
// succeeded since.
func (s *Session) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// UserID returns the user the session was initialised for.
func (s *Session) UserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userID
}

// Initialized reports whether a record is cached.
func (s *Session) Initialized() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current != nil
}

// Current returns a copy of the cached record, or nil before initialisation.
func (s *Session) Current() *domain.UserScore {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Clone()
}

// fail records err for Err and returns it. Callers hold s.mu.
func (s *Session) fail(err error) error {
	s.lastErr = err
	return err
}

// emit publishes an event. Handler failures are logged and never undo the
// write that produced the event.
func (s *Session) emit(ctx context.Context, eventType string, payload any) {
	if s.emitter == nil {
		return
	}
	log := logger.FromContextOrDefault(ctx, s.logger)
	event, err := events.NewEvent(eventType, s.userID, payload)
	if err != nil {
		log.Error("failed to build event", slog.String("event_type", eventType), slog.String("error", err.Error()))
		return
	}
	if err := s.emitter.EmitEvent(ctx, event); err != nil {
		log.Warn("event handler failed", slog.String("event_type", eventType), slog.String("error", err.Error()))
	}
}
