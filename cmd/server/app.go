package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/phrazzld/coban-api/internal/api"
	"github.com/phrazzld/coban-api/internal/config"
	"github.com/phrazzld/coban-api/internal/domain/mastery"
	"github.com/phrazzld/coban-api/internal/domain/pairing"
	"github.com/phrazzld/coban-api/internal/events"
	"github.com/phrazzld/coban-api/internal/service/game"
	"github.com/phrazzld/coban-api/internal/service/score_session"
)

// application holds the wired services behind the server.
type application struct {
	config   *config.Config
	logger   *slog.Logger
	store    openedStore
	emitter  *events.InMemoryEventEmitter
	sessions *score_session.Manager
	games    *game.Service
}

// newApplication opens the configured store and wires every service on top
// of it.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger, migrateUp bool) (*application, error) {
	scoreStore, err := openStore(ctx, cfg.Store, migrateUp, logger)
	if err != nil {
		logStoreError(logger, "failed to open score store", err)
		return nil, fmt.Errorf("failed to open score store: %w", err)
	}

	app := &application{
		config:  cfg,
		logger:  logger,
		store:   scoreStore,
		emitter: events.NewInMemoryEventEmitter(logger),
	}
	app.emitter.RegisterHandler(events.NewLogHandler(logger))

	opts := []score_session.Option{
		score_session.WithEmitter(app.emitter),
		score_session.WithMasteryService(mastery.NewServiceWithParams(masteryParams(cfg.Mastery))),
	}
	if path := cfg.Content.CatalogPath; path != "" {
		catalog, err := score_session.LoadCatalogFile(path)
		if err != nil {
			app.close()
			return nil, fmt.Errorf("failed to load content catalog: %w", err)
		}
		logger.Info("content catalog loaded", slog.Int("parents", catalog.ParentCount()))
		opts = append(opts, score_session.WithCatalog(catalog))
	}

	app.sessions = score_session.NewManager(scoreStore.ScoreStore, logger, opts...)
	app.games = game.NewService(app.sessions, app.emitter, gameConfig(cfg.Game), logger)

	logger.Info("application initialized")
	return app, nil
}

// router builds the HTTP handler.
func (app *application) router() http.Handler {
	return api.NewRouter(api.RouterDeps{
		Sessions: app.sessions,
		Games:    app.games,
		Store:    app.store.ScoreStore,
		Logger:   app.logger,
	})
}

// close releases the store connection.
func (app *application) close() {
	if err := app.store.Close(); err != nil {
		logStoreError(app.logger, "error closing score store", err)
	}
}

func masteryParams(cfg config.MasteryConfig) *mastery.Params {
	return mastery.NewParams(mastery.ParamsConfig{
		GreenThreshold:    cfg.GreenThreshold,
		YellowThreshold:   cfg.YellowThreshold,
		OrangeThreshold:   cfg.OrangeThreshold,
		MasteredWordRatio: cfg.MasteredWordRatio,
		ReportSize:        cfg.ReportSize,
	})
}

func gameConfig(cfg config.GameConfig) game.Config {
	return game.Config{
		MaxActiveGames: cfg.MaxActiveGames,
		Language:       cfg.Language,
		EngineOptions: []pairing.Option{
			pairing.WithSectionSize(cfg.SectionSize),
			pairing.WithRetrySectionSize(cfg.RetrySectionSize),
			pairing.WithCompletionDelay(cfg.CompletionDelay),
			pairing.WithErrorFlashDelay(cfg.ErrorFlashDelay),
			pairing.WithRetryDecoy(cfg.RetryDecoy),
		},
	}
}
