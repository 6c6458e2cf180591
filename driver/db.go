// ABOUTME: This file owns the pgx connection pool and the shared query helpers
// ABOUTME: Entity-specific SQL lives in the db_*.go files next to this one
package driver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"cienaga/domain"
)

// Init builds the connection pool, verifies it with a ping and returns it.
// The caller owns the pool and must Close it.
func Init(ctx context.Context, connString string, logger *slog.Logger) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		logger.ErrorContext(ctx, "failed to parse database config", "error", err)
		return nil, fmt.Errorf("%w: parsing database config: %v", domain.ErrFatal, err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = 1 * time.Hour
	config.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		logger.ErrorContext(ctx, "failed to connect to database", "error", err)
		return nil, fmt.Errorf("%w: connecting to database: %v", domain.ErrFatal, err)
	}

	if err := pool.Ping(ctx); err != nil {
		logger.ErrorContext(ctx, "failed to ping database", "error", err)
		pool.Close()
		return nil, fmt.Errorf("%w: pinging database: %v", domain.ErrFatal, err)
	}

	logger.InfoContext(ctx, "connected to database pool", "max_conns", config.MaxConns, "min_conns", config.MinConns)

	return pool, nil
}

// retryDBOperation retries operations that fail with "conn busy", which the
// pool surfaces under connection churn. Other errors return immediately.
func retryDBOperation(ctx context.Context, operation func() error) error {
	const maxRetries = 3
	baseDelay := 100 * time.Millisecond

	var err error
	for attempt := 0; attempt < maxRetries; attempt++ {
		err = operation()
		if err == nil {
			return nil
		}
		if !strings.Contains(err.Error(), "conn busy") {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(baseDelay * time.Duration(1<<attempt)):
		}
	}

	return err
}

// classifyError maps unique-key violations to ErrIntegrityConflict so upsert
// callers can treat them as "already present".
func classifyError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("%w: %s", domain.ErrIntegrityConflict, pgErr.ConstraintName)
	}
	return err
}
