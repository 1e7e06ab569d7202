// Package app assembles the store, event publisher, domain service and HTTP
// router from configuration.
package app

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"example.com/exercisetracker/internal/api"
	"example.com/exercisetracker/internal/config"
	"example.com/exercisetracker/internal/domain"
	"example.com/exercisetracker/internal/events"
	"example.com/exercisetracker/internal/persistence"
	httptransport "example.com/exercisetracker/internal/transport/http"
)

type publisher interface {
	domain.EventPublisher
	io.Closer
}

// App is a fully wired exercise tracker.
type App struct {
	cfg       *config.Config
	logger    zerolog.Logger
	store     *persistence.Store
	publisher publisher
	router    http.Handler
}

// New opens the configured store and wires every component on top of it.
func New(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*App, error) {
	store, err := persistence.Open(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	var pub publisher = events.Noop{}
	if cfg.Events.Enabled() {
		pub = events.NewKafkaPublisher(cfg.Events.KafkaBrokers, cfg.Events.Topic, cfg.Store.Timeout)
		logger.Info().
			Strs("brokers", cfg.Events.KafkaBrokers).
			Str("topic", cfg.Events.Topic).
			Msg("publishing exercise events")
	}

	service := domain.NewService(store,
		domain.WithLogger(logger),
		domain.WithPublisher(pub),
	)
	handler := api.NewHandler(service,
		api.WithErrorStatusCodes(cfg.HTTP.ErrorStatusCodes),
		api.WithLogger(logger),
	)

	return &App{
		cfg:       cfg,
		logger:    logger,
		store:     store,
		publisher: pub,
		router:    api.NewRouter(handler, cfg, logger),
	}, nil
}

// Handler returns the root HTTP handler.
func (a *App) Handler() http.Handler {
	return a.router
}

// Migrate brings the store schema up to date.
func (a *App) Migrate(ctx context.Context) error {
	a.logger.Info().Str("driver", a.store.Driver()).Msg("applying migrations")
	return a.store.Migrate(ctx)
}

// Reset wipes every user and exercise from the store.
func (a *App) Reset(ctx context.Context) error {
	a.logger.Warn().Str("driver", a.store.Driver()).Msg("resetting store")
	return a.store.Reset(ctx)
}

// Run serves HTTP until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	server := httptransport.NewServer(a.cfg.Server, a.router, a.logger)
	return server.Run(ctx)
}

// Close releases the publisher and the store.
func (a *App) Close(ctx context.Context) error {
	return errors.Join(a.publisher.Close(), a.store.Close(ctx))
}
