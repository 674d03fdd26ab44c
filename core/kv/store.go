package kv

import (
	"context"
	"time"
)

// Store is the key/value contract shared by every storage backend.
// Implementations must be safe for concurrent use.
type Store interface {
	// Get returns the value stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key. A zero ttl means the entry never expires.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// SetNX stores value under key only if the key is absent, returning
	// whether the write happened. Used as the single-flight primitive for
	// renewal cycle locking.
	SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// List returns all keys starting with prefix.
	List(ctx context.Context, prefix string) ([]string, error)
}
