package redis

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/acmegate/core/kv"
)

const defaultScanBatchSize = 1000

// Store implements kv.Store over Redis. It is the flat-store backend of
// DB-less mode, shared by every gateway node.
type Store struct {
	client    *redis.Client
	scanBatch int64
}

// NewStore wraps an existing Redis client. scanBatchSize controls SCAN
// page size during prefix listing; zero falls back to the default.
func NewStore(client *redis.Client, scanBatchSize int) *Store {
	if scanBatchSize <= 0 {
		scanBatchSize = defaultScanBatchSize
	}
	return &Store{client: client, scanBatch: int64(scanBatchSize)}
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := s.client.Get(ctx, key).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return nil, kv.ErrNotFound
	case err != nil:
		return nil, fmt.Errorf("%w: get %s: %v", kv.ErrUnavailable, key, err)
	}
	return value, nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("%w: set %s: %v", kv.ErrUnavailable, key, err)
	}
	return nil
}

func (s *Store) SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	acquired, err := s.client.SetNX(ctx, key, value, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("%w: setnx %s: %v", kv.ErrUnavailable, key, err)
	}
	return acquired, nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("%w: delete %s: %v", kv.ErrUnavailable, key, err)
	}
	return nil
}

func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	iter := s.client.Scan(ctx, 0, prefix+"*", s.scanBatch).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("%w: scan %s: %v", kv.ErrUnavailable, prefix, err)
	}

	// SCAN order is unspecified; keep listings deterministic.
	sort.Strings(keys)
	return keys, nil
}
