// Package game keeps the pairing games that are in progress and hands the
// results of finished games to the player's score session.
package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/coban-api/internal/domain"
	"github.com/phrazzld/coban-api/internal/domain/pairing"
	"github.com/phrazzld/coban-api/internal/events"
	"github.com/phrazzld/coban-api/internal/platform/logger"
	"github.com/phrazzld/coban-api/internal/service/score_session"
)

// Common errors for the game service
var (
	// ErrGameNotFound indicates that no active game has the given ID.
	ErrGameNotFound = errors.New("game not found")

	// ErrTooManyGames indicates that the active game limit has been reached.
	ErrTooManyGames = errors.New("too many active games")

	// ErrGameNotComplete indicates that a game was finished before its last
	// section was cleared.
	ErrGameNotComplete = errors.New("game is not complete")

	// ErrInvalidGame indicates a start request that cannot produce a game.
	ErrInvalidGame = errors.New("invalid game request")

	// ErrFinishInProgress indicates that another call is already recording
	// the game's results.
	ErrFinishInProgress = errors.New("game is already being finished")
)

// SessionProvider returns an initialised score session for a user.
type SessionProvider interface {
	Session(ctx context.Context, userID string, level domain.Level) (*score_session.Session, error)
}

// Game is one pairing game in progress.
type Game struct {
	ID           uuid.UUID
	UserID       string
	ExerciseType domain.ExerciseType
	Engine       *pairing.Engine
	CreatedAt    time.Time

	// finishing is guarded by Service.mu.
	finishing bool
}

// StartRequest describes a new game.
type StartRequest struct {
	UserID string
	Words  []domain.Word

	// ExerciseType labels the results fed to the score session. Defaults to pairing.
	ExerciseType domain.ExerciseType

	// Cards picks the card factory ("meaning" or "reading"); Language the
	// meaning language for "meaning" cards.
	Cards    string
	Language string
}

// FinishResult is what a finished game contributed.
type FinishResult struct {
	GameID       uuid.UUID               `json:"gameId"`
	Score        int                     `json:"score"`
	CorrectPairs int                     `json:"correctPairs"`
	ErrorWords   pairing.WordSet         `json:"errorWords"`
	Results      []domain.ExerciseResult `json:"results"`
}

// Config holds the service settings.
type Config struct {
	// MaxActiveGames caps the registry; zero means no cap.
	MaxActiveGames int

	// Language is the default meaning language.
	Language string

	// EngineOptions apply to every engine before per-game settings.
	EngineOptions []pairing.Option
}

// Service is an in-memory registry of games keyed by ID.
type Service struct {
	mu       sync.Mutex
	games    map[uuid.UUID]*Game
	sessions SessionProvider
	emitter  events.EventEmitter
	cfg      Config
	logger   *slog.Logger
	now      func() time.Time
}

// NewService creates a game registry. emitter may be nil.
func NewService(sessions SessionProvider, emitter events.EventEmitter, cfg Config, logger *slog.Logger) *Service {
	if sessions == nil {
		panic("session provider cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		games:    make(map[uuid.UUID]*Game),
		sessions: sessions,
		emitter:  emitter,
		cfg:      cfg,
		logger:   logger.With(slog.String("component", "game_service")),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Start deals a new game for req.UserID.
func (s *Service) Start(ctx context.Context, req StartRequest) (*Game, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if req.UserID == "" {
		return nil, fmt.Errorf("%w: %w", ErrInvalidGame, domain.ErrEmptyUserID)
	}
	if req.ExerciseType == "" {
		req.ExerciseType = domain.ExercisePairing
	}
	if !req.ExerciseType.Valid() {
		return nil, fmt.Errorf("%w: %w", ErrInvalidGame, domain.ErrInvalidExerciseType)
	}
	for _, w := range req.Words {
		if w.ParentID == "" {
			return nil, fmt.Errorf("%w: word %q: %w", ErrInvalidGame, w.ID, domain.ErrEmptyParentID)
		}
	}

	lang := req.Language
	if lang == "" {
		lang = s.cfg.Language
	}
	cards, err := pairing.CardFactoryFor(req.Cards, lang)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidGame, err)
	}

	opts := append(append([]pairing.Option{}, s.cfg.EngineOptions...), pairing.WithCardFactory(cards))
	engine, err := pairing.NewEngine(req.Words, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidGame, err)
	}

	g := &Game{
		ID:           uuid.New(),
		UserID:       req.UserID,
		ExerciseType: req.ExerciseType,
		Engine:       engine,
		CreatedAt:    s.now(),
	}

	s.mu.Lock()
	if s.cfg.MaxActiveGames > 0 && len(s.games) >= s.cfg.MaxActiveGames {
		s.mu.Unlock()
		log.Warn("active game limit reached", slog.Int("max_active_games", s.cfg.MaxActiveGames))
		return nil, ErrTooManyGames
	}
	s.games[g.ID] = g
	s.mu.Unlock()

	log.Info("game started",
		slog.String("game_id", g.ID.String()),
		slog.String("user_id", g.UserID),
		slog.Int("words", len(req.Words)),
		slog.Int("sections", engine.TotalSections()))
	return g, nil
}

// Get returns an active game.
func (s *Service) Get(id uuid.UUID) (*Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.games[id]
	if !ok {
		return nil, ErrGameNotFound
	}
	return g, nil
}

// Click forwards a card tap to the game's engine.
func (s *Service) Click(ctx context.Context, id uuid.UUID, cardID string) (pairing.ClickOutcome, error) {
	g, err := s.Get(id)
	if err != nil {
		return pairing.ClickOutcome{}, err
	}
	outcome, err := g.Engine.HandleCardClick(cardID)
	if err != nil {
		return pairing.ClickOutcome{}, err
	}
	logger.FromContextOrDefault(ctx, s.logger).Debug("card clicked",
		slog.String("game_id", id.String()),
		slog.String("card_id", cardID),
		slog.String("result", string(outcome.Result)))
	return outcome, nil
}

// Retry starts retry mode and deals a pass of the words that were wrong.
func (s *Service) Retry(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	g, ok := s.games[id]
	if !ok {
		s.mu.Unlock()
		return ErrGameNotFound
	}
	if g.finishing {
		s.mu.Unlock()
		return ErrFinishInProgress
	}
	err := g.Engine.StartRetryMode()
	if err == nil {
		err = g.Engine.GenerateRetrySession()
	}
	s.mu.Unlock()
	if err != nil {
		return err
	}
	logger.FromContextOrDefault(ctx, s.logger).Info("retry pass started",
		slog.String("game_id", id.String()),
		slog.Int("words", g.Engine.TotalWordsInSession()))
	return nil
}

// Finish records a completed game's results in the player's score session
// and removes the game. A game whose results could not be saved stays
// active so the call can be repeated. Only one Finish per game runs at a
// time; a concurrent call gets ErrFinishInProgress.
func (s *Service) Finish(ctx context.Context, id uuid.UUID) (*FinishResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(slog.String("game_id", id.String()))

	g, err := s.claimForFinish(id)
	if err != nil {
		return nil, err
	}

	result := &FinishResult{
		GameID:       g.ID,
		Score:        g.Engine.Score(),
		CorrectPairs: g.Engine.CorrectPairs(),
		ErrorWords:   g.Engine.ErrorWords(),
		Results:      g.Engine.Results(g.ExerciseType),
	}

	sess, err := s.sessions.Session(ctx, g.UserID, "")
	if err != nil {
		s.releaseClaim(g)
		log.Error("failed to open score session", slog.String("error", err.Error()))
		return nil, err
	}
	if err := sess.RecordResults(ctx, result.Results); err != nil {
		s.releaseClaim(g)
		log.Error("failed to record game results", slog.String("error", err.Error()))
		return nil, err
	}

	s.mu.Lock()
	delete(s.games, id)
	s.mu.Unlock()

	log.Info("game finished",
		slog.String("user_id", g.UserID),
		slog.Int("score", result.Score),
		slog.Int("error_words", result.ErrorWords.Len()))
	s.emitCompleted(ctx, g, result)
	return result, nil
}

// claimForFinish marks a completed game as finishing.
func (s *Service) claimForFinish(id uuid.UUID) (*Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.games[id]
	if !ok {
		return nil, ErrGameNotFound
	}
	if g.finishing {
		return nil, ErrFinishInProgress
	}
	if g.Engine.Phase() != pairing.PhaseGameComplete {
		return nil, ErrGameNotComplete
	}
	g.finishing = true
	return g, nil
}

func (s *Service) releaseClaim(g *Game) {
	s.mu.Lock()
	g.finishing = false
	s.mu.Unlock()
}

// Discard drops a game without recording anything.
func (s *Service) Discard(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	_, ok := s.games[id]
	delete(s.games, id)
	s.mu.Unlock()

	if !ok {
		return ErrGameNotFound
	}
	logger.FromContextOrDefault(ctx, s.logger).Info("game discarded", slog.String("game_id", id.String()))
	return nil
}

// Len returns the number of active games.
func (s *Service) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.games)
}

func (s *Service) emitCompleted(ctx context.Context, g *Game, result *FinishResult) {
	if s.emitter == nil {
		return
	}
	event, err := events.NewEvent(events.TypeGameCompleted, g.UserID, events.GameCompletedPayload{
		GameID:       g.ID.String(),
		ExerciseType: string(g.ExerciseType),
		Score:        result.Score,
		CorrectPairs: result.CorrectPairs,
		ErrorWords:   result.ErrorWords.Slice(),
	})
	if err == nil {
		err = s.emitter.EmitEvent(ctx, event)
	}
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Warn("failed to emit game event", slog.String("error", err.Error()))
	}
}
