package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	apiMiddleware "github.com/phrazzld/coban-api/internal/api/middleware"
	"github.com/phrazzld/coban-api/internal/service/game"
	"github.com/phrazzld/coban-api/internal/service/score_session"
	"github.com/phrazzld/coban-api/internal/store"
)

// healthTimeout bounds the store probe behind /health.
const healthTimeout = 2 * time.Second

// RouterDeps are the services behind the HTTP routes.
type RouterDeps struct {
	Sessions *score_session.Manager
	Games    *game.Service
	Store    store.ScoreStore
	Logger   *slog.Logger
}

// NewRouter builds the application router with all routes and middleware.
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(apiMiddleware.Trace(deps.Logger))
	r.Use(apiMiddleware.RequestLog)
	r.Use(chimw.Recoverer)

	scores := NewScoreHandler(deps.Sessions, deps.Logger)
	games := NewGameHandler(deps.Games, deps.Logger)

	r.Route("/api", func(r chi.Router) {
		scores.Routes(r)
		games.Routes(r)
	})
	r.Get("/health", HealthHandler(deps.Store, healthTimeout))

	return r
}
