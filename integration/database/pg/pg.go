package pg

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Config holds PostgreSQL connection settings with environment variable
// mapping.
type Config struct {
	ConnectionURL  string        `env:"DATABASE_URL" envDefault:"postgres://localhost:5432/acmegate?sslmode=disable"`
	RetryAttempts  int           `env:"DATABASE_RETRY_ATTEMPTS" envDefault:"3"`
	RetryInterval  time.Duration `env:"DATABASE_RETRY_INTERVAL" envDefault:"5s"`
	ConnectTimeout time.Duration `env:"DATABASE_CONNECT_TIMEOUT" envDefault:"30s"`
}

// Connect creates a pgx connection pool and verifies connectivity with a
// ping before returning it, retrying transient failures on the configured
// cadence.
func Connect(ctx context.Context, cfg Config) (*pgxpool.Pool, error) {
	if cfg.ConnectionURL == "" {
		return nil, ErrEmptyConnectionURL
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.ConnectionURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailedToParseConnString, err)
	}

	connectCtx := ctx
	if cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		connectCtx, cancel = context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()
	}

	pool, err := pgxpool.NewWithConfig(connectCtx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotReady, err)
	}

	attempts := cfg.RetryAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if lastErr = pool.Ping(connectCtx); lastErr == nil {
			return pool, nil
		}
		if attempt < attempts {
			select {
			case <-connectCtx.Done():
				pool.Close()
				return nil, fmt.Errorf("%w: %v", ErrNotReady, connectCtx.Err())
			case <-time.After(cfg.RetryInterval):
			}
		}
	}

	pool.Close()
	return nil, fmt.Errorf("%w: %v", ErrNotReady, lastErr)
}

// Healthcheck returns a health check function for monitoring PostgreSQL
// connectivity.
func Healthcheck(pool *pgxpool.Pool) func(context.Context) error {
	return func(ctx context.Context) error {
		if err := pool.Ping(ctx); err != nil {
			return fmt.Errorf("%w: %v", ErrHealthcheckFailed, err)
		}
		return nil
	}
}
