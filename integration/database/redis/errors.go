package redis

import "errors"

// Domain-specific Redis errors for consistent handling across the engine.
// Use errors.Is() to check error types for retry logic and user-facing
// messages.
var (
	ErrFailedToParseConnString = errors.New("failed to parse redis connection string")
	ErrNotReady                = errors.New("redis did not become ready within the given time period")
	ErrEmptyConnectionURL      = errors.New("empty redis connection URL")
	ErrHealthcheckFailed       = errors.New("redis healthcheck failed")
)
