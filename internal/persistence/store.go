// Package persistence selects and opens the configured store backend.
package persistence

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"example.com/exercisetracker/internal/config"
	"example.com/exercisetracker/internal/domain"
	"example.com/exercisetracker/internal/persistence/memory"
	mongostore "example.com/exercisetracker/internal/persistence/mongo"
	"example.com/exercisetracker/internal/persistence/postgres"
)

// Store is an opened repository together with its lifecycle hooks.
type Store struct {
	domain.Repository

	driver  string
	migrate func(context.Context) error
	close   func(context.Context) error
}

// Open connects to the backend named by cfg.Store.Driver.
func Open(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*Store, error) {
	storeCfg := cfg.Store
	logger = logger.With().Str("driver", storeCfg.Driver).Logger()

	switch storeCfg.Driver {
	case config.DriverMemory:
		return &Store{Repository: memory.NewRepository(), driver: storeCfg.Driver}, nil

	case config.DriverPostgres:
		db, err := postgres.Open(ctx, storeCfg.PostgresDSN, postgres.OpenOptions{
			Trace:       cfg.Primary.IsLocal(),
			Logger:      logger,
			PingTimeout: storeCfg.Timeout,
		})
		if err != nil {
			return nil, err
		}
		return &Store{
			Repository: postgres.NewRepository(db),
			driver:     storeCfg.Driver,
			migrate: func(ctx context.Context) error {
				return postgres.Migrate(ctx, db, logger)
			},
			close: func(context.Context) error {
				return db.Close()
			},
		}, nil

	case config.DriverMongo:
		client, err := mongostore.Connect(ctx, storeCfg.MongoURI, storeCfg.Timeout, logger)
		if err != nil {
			return nil, err
		}
		repo := mongostore.NewRepository(client.Database(storeCfg.MongoDatabase))
		if err := repo.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(ctx)
			return nil, err
		}
		return &Store{
			Repository: repo,
			driver:     storeCfg.Driver,
			close:      client.Disconnect,
		}, nil

	default:
		return nil, fmt.Errorf("unknown store driver %q", storeCfg.Driver)
	}
}

// Driver names the backend in use.
func (s *Store) Driver() string {
	return s.driver
}

// Migrate applies schema migrations. Backends without a schema do nothing.
func (s *Store) Migrate(ctx context.Context) error {
	if s.migrate == nil {
		return nil
	}
	return s.migrate(ctx)
}

// Close releases the backend's connections.
func (s *Store) Close(ctx context.Context) error {
	if s.close == nil {
		return nil
	}
	return s.close(ctx)
}
