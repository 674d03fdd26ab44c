package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config holds Redis connection settings with environment variable mapping.
type Config struct {
	ConnectionURL  string        `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`
	RetryAttempts  int           `env:"REDIS_RETRY_ATTEMPTS" envDefault:"3"`
	RetryInterval  time.Duration `env:"REDIS_RETRY_INTERVAL" envDefault:"5s"`
	ConnectTimeout time.Duration `env:"REDIS_CONNECT_TIMEOUT" envDefault:"30s"`
	ScanBatchSize  int           `env:"REDIS_SCAN_BATCH_SIZE" envDefault:"1000"`
}

// Connect creates a Redis client and verifies connectivity with a ping
// before returning it, retrying transient failures on the configured
// cadence.
func Connect(ctx context.Context, cfg Config) (*redis.Client, error) {
	if cfg.ConnectionURL == "" {
		return nil, ErrEmptyConnectionURL
	}

	opts, err := redis.ParseURL(cfg.ConnectionURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailedToParseConnString, err)
	}

	client := redis.NewClient(opts)

	connectCtx := ctx
	if cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		connectCtx, cancel = context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()
	}

	attempts := cfg.RetryAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if lastErr = client.Ping(connectCtx).Err(); lastErr == nil {
			return client, nil
		}
		if attempt < attempts {
			select {
			case <-connectCtx.Done():
				_ = client.Close()
				return nil, fmt.Errorf("%w: %v", ErrNotReady, connectCtx.Err())
			case <-time.After(cfg.RetryInterval):
			}
		}
	}

	_ = client.Close()
	return nil, fmt.Errorf("%w: %v", ErrNotReady, lastErr)
}

// Healthcheck returns a health check function for monitoring Redis
// connectivity.
func Healthcheck(client *redis.Client) func(context.Context) error {
	return func(ctx context.Context) error {
		if err := client.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("%w: %v", ErrHealthcheckFailed, err)
		}
		return nil
	}
}
