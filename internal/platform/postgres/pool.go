// Copyright (c) 2026 GenrA. All rights reserved.

// Package postgres owns the pgx connection pool used by every repository,
// plus a small transaction helper for multi-statement writes.
package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	connectTimeout = 5 * time.Second
	pingTimeout    = 2 * time.Second
)

// Options tunes the pool. Zero values fall back to pgxpool defaults, except
// Attempts which is at least one.
type Options struct {
	MaxConns         int32
	MinConns         int32
	StatementTimeout time.Duration

	// Attempts bounds the initial connection retries while the database starts.
	Attempts uint
}

/*
NewPool connects to PostgreSQL and verifies the connection.

Description: The first connection is retried with exponential backoff so the
API can start alongside its database. Every physical connection gets the
statement timeout applied as a session setting.

Returns:
  - *pgxpool.Pool: A pool that answered a ping
  - error: Invalid DSN, or the last connection failure after all attempts
*/
func NewPool(ctx context.Context, dsn string, options Options, logger *slog.Logger) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres_dsn_invalid: %w", err)
	}

	if options.MaxConns > 0 {
		poolConfig.MaxConns = options.MaxConns
	}
	if options.MinConns > 0 {
		poolConfig.MinConns = options.MinConns
	}
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 10 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute
	poolConfig.ConnConfig.ConnectTimeout = connectTimeout

	if options.StatementTimeout > 0 {
		statement := fmt.Sprintf("SET statement_timeout = %d", options.StatementTimeout.Milliseconds())
		poolConfig.AfterConnect = func(connectCtx context.Context, connection *pgx.Conn) error {
			_, err := connection.Exec(connectCtx, statement)
			return err
		}
	}

	retry := backoff.NewExponentialBackOff()
	retry.InitialInterval = 500 * time.Millisecond
	retry.MaxInterval = 5 * time.Second

	attempt := 0
	pool, err := backoff.Retry(ctx, func() (*pgxpool.Pool, error) {
		attempt++
		pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		if err := Ping(ctx, pool); err != nil {
			pool.Close()
			logger.Warn("postgres_connect_retry", slog.Int("attempt", attempt), slog.Any("error", err))
			return nil, err
		}
		return pool, nil
	}, backoff.WithBackOff(retry), backoff.WithMaxTries(max(options.Attempts, 1)))
	if err != nil {
		return nil, fmt.Errorf("postgres_connect_failed: %w", err)
	}

	logger.Info("postgres_pool_connected",
		slog.Int("max_conns", int(poolConfig.MaxConns)),
		slog.Int("attempts", attempt),
	)
	return pool, nil
}

// Ping verifies that the pool can reach the database.
func Ping(ctx context.Context, pool *pgxpool.Pool) error {
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		return fmt.Errorf("postgres_ping_failed: %w", err)
	}
	return nil
}

// TxBeginner is satisfied by *pgxpool.Pool and pgx.Tx.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// InTx runs fn in a transaction. The transaction commits only when fn returns nil.
func InTx(ctx context.Context, db TxBeginner, fn func(tx pgx.Tx) error) error {
	tx, err := db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("postgres_begin_failed: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("postgres_commit_failed: %w", err)
	}
	return nil
}
