// Package postgres stores users and exercises in PostgreSQL through
// database/sql and the pgx driver.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	pgxzero "github.com/jackc/pgx-zerolog"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jackc/pgx/v5/tracelog"
	"github.com/rs/zerolog"

	"example.com/exercisetracker/internal/logging"
)

// DBTX is the subset of database/sql used by the repository.
// Both *sql.DB and *sql.Tx satisfy this interface.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// OpenOptions tunes how Open connects.
type OpenOptions struct {
	// Trace logs every query through Logger at a level derived from it.
	Trace       bool
	Logger      zerolog.Logger
	PingTimeout time.Duration
}

// Open parses dsn, optionally wires query tracing, and returns a pinged pool.
func Open(ctx context.Context, dsn string, opts OpenOptions) (*sql.DB, error) {
	connConfig, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}

	if opts.Trace {
		connConfig.Tracer = &tracelog.TraceLog{
			Logger:   pgxzero.NewLogger(opts.Logger.With().Str("component", "pgx").Logger()),
			LogLevel: logging.PgxTraceLevel(opts.Logger.GetLevel()),
		}
	}

	db := stdlib.OpenDB(*connConfig)

	timeout := opts.PingTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	opts.Logger.Info().Msg("connected to postgres")
	return db, nil
}
