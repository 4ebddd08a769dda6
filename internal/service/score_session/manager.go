package score_session

import (
	"context"
	"log/slog"
	"sync"

	"github.com/phrazzld/coban-api/internal/domain"
	"github.com/phrazzld/coban-api/internal/store"
)

// Manager hands out one Session per user, creating and initialising them on
// first use.
type Manager struct {
	mu       sync.Mutex
	store    store.ScoreStore
	opts     []Option
	sessions map[string]*Session
	logger   *slog.Logger
}

// NewManager creates a manager whose sessions share scoreStore and opts.
func NewManager(scoreStore store.ScoreStore, logger *slog.Logger, opts ...Option) *Manager {
	if scoreStore == nil {
		panic("score store cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		store:    scoreStore,
		opts:     append([]Option{WithLogger(logger)}, opts...),
		sessions: make(map[string]*Session),
		logger:   logger.With(slog.String("component", "score_session_manager")),
	}
}

// Session returns userID's session, initialising it at level when it is new
// or an earlier initialisation failed. An empty level keeps the stored one,
// or the default for a new record.
func (m *Manager) Session(ctx context.Context, userID string, level domain.Level) (*Session, error) {
	if userID == "" {
		return nil, &ServiceError{Operation: opInitialize, Message: "invalid user", Err: domain.ErrEmptyUserID}
	}

	m.mu.Lock()
	s, ok := m.sessions[userID]
	if !ok {
		s = NewSession(m.store, m.opts...)
		m.sessions[userID] = s
	}
	m.mu.Unlock()

	if s.Initialized() {
		return s, nil
	}
	if err := s.Initialize(ctx, userID, level); err != nil {
		return nil, err
	}
	return s, nil
}

// Lookup returns an existing session without touching storage.
func (m *Manager) Lookup(userID string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[userID]
	return s, ok
}

// Forget drops a user's cached session.
func (m *Manager) Forget(userID string) {
	m.mu.Lock()
	delete(m.sessions, userID)
	m.mu.Unlock()
}

// Len returns the number of cached sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
