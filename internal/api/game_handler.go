package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/coban-api/internal/api/shared"
	"github.com/phrazzld/coban-api/internal/domain"
	"github.com/phrazzld/coban-api/internal/platform/logger"
	"github.com/phrazzld/coban-api/internal/service/game"
)

// GameHandler serves the matching game routes.
type GameHandler struct {
	games  *game.Service
	logger *slog.Logger
}

// NewGameHandler creates a GameHandler.
func NewGameHandler(games *game.Service, logger *slog.Logger) *GameHandler {
	if games == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("game service cannot be nil for GameHandler")
	}
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for GameHandler")
	}
	return &GameHandler{
		games:  games,
		logger: logger.With(slog.String("component", "game_handler")),
	}
}

// Routes registers the game routes under /games.
func (h *GameHandler) Routes(r chi.Router) {
	r.Route("/games", func(r chi.Router) {
		r.Post("/", h.StartGame)
		r.Get("/{id}", h.GetGame)
		r.Post("/{id}/click", h.Click)
		r.Post("/{id}/retry", h.Retry)
		r.Post("/{id}/finish", h.Finish)
		r.Delete("/{id}", h.Discard)
	})
}

func gameToResponse(g *game.Game) GameResponse {
	return GameResponse{
		ID:           g.ID,
		UserID:       g.UserID,
		ExerciseType: g.ExerciseType,
		CreatedAt:    g.CreatedAt,
		State:        g.Engine.Snapshot(),
	}
}

// loadGame resolves the {id} path parameter, writing the error response
// itself when that fails.
func (h *GameHandler) loadGame(w http.ResponseWriter, r *http.Request) (*game.Game, bool) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return nil, false
	}
	g, err := h.games.Get(id)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return nil, false
	}
	return g, true
}

// StartGame handles POST /games.
func (h *GameHandler) StartGame(w http.ResponseWriter, r *http.Request) {
	var req StartGameRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	g, err := h.games.Start(r.Context(), game.StartRequest{
		UserID:       req.UserID,
		Words:        req.words(),
		ExerciseType: domain.ExerciseType(req.ExerciseType),
		Cards:        req.Cards,
		Language:     req.Language,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to start game")
		return
	}

	logger.FromContextOrDefault(r.Context(), h.logger).Debug("game created",
		slog.String("game_id", g.ID.String()))
	shared.RespondWithJSON(w, r, http.StatusCreated, gameToResponse(g))
}

// GetGame handles GET /games/{id}.
func (h *GameHandler) GetGame(w http.ResponseWriter, r *http.Request) {
	g, ok := h.loadGame(w, r)
	if !ok {
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, gameToResponse(g))
}

// Click handles POST /games/{id}/click.
func (h *GameHandler) Click(w http.ResponseWriter, r *http.Request) {
	g, ok := h.loadGame(w, r)
	if !ok {
		return
	}
	var req ClickRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	outcome, err := h.games.Click(r.Context(), g.ID, req.CardID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to handle click")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, ClickResponse{Outcome: outcome, State: g.Engine.Snapshot()})
}

// Retry handles POST /games/{id}/retry.
func (h *GameHandler) Retry(w http.ResponseWriter, r *http.Request) {
	g, ok := h.loadGame(w, r)
	if !ok {
		return
	}
	if err := h.games.Retry(r.Context(), g.ID); err != nil {
		HandleAPIError(w, r, err, "Failed to start retry")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, gameToResponse(g))
}

// Finish handles POST /games/{id}/finish.
func (h *GameHandler) Finish(w http.ResponseWriter, r *http.Request) {
	g, ok := h.loadGame(w, r)
	if !ok {
		return
	}
	result, err := h.games.Finish(r.Context(), g.ID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to finish game")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, result)
}

// Discard handles DELETE /games/{id}.
func (h *GameHandler) Discard(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	if err := h.games.Discard(r.Context(), id); err != nil {
		HandleAPIError(w, r, err, "Failed to discard game")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
