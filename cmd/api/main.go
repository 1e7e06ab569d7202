package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"example.com/exercisetracker/internal/app"
	"example.com/exercisetracker/internal/config"
	"example.com/exercisetracker/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "exercisetracker",
		Short:         "Exercise tracker HTTP service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCommand(), newMigrateCommand(), newResetCommand())
	return root
}

func newServeCommand() *cobra.Command {
	var reset bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App, logger zerolog.Logger) error {
				if err := a.Migrate(ctx); err != nil {
					return err
				}
				if reset {
					if err := a.Reset(ctx); err != nil {
						return err
					}
				}
				return a.Run(ctx)
			})
		},
	}
	cmd.Flags().BoolVar(&reset, "reset", false, "delete every user and exercise before serving")
	return cmd
}

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply store migrations and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App, logger zerolog.Logger) error {
				if err := a.Migrate(ctx); err != nil {
					return err
				}
				logger.Info().Msg("migrations applied")
				return nil
			})
		},
	}
}

func newResetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Delete every user and exercise and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App, logger zerolog.Logger) error {
				if err := a.Migrate(ctx); err != nil {
					return err
				}
				return a.Reset(ctx)
			})
		},
	}
}

func withApp(ctx context.Context, fn func(context.Context, *app.App, zerolog.Logger) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := logging.New(cfg)

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error().Err(err).Msg("startup failed")
		return err
	}
	defer func() {
		if err := a.Close(context.Background()); err != nil {
			logger.Error().Err(err).Msg("shutdown failed")
		}
	}()

	return fn(ctx, a, logger)
}
