package pg

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/acmegate/core/kv"
)

// Store implements kv.Store on a dedicated key/value table, so account and
// renewal bookkeeping lives next to the relational certificate entities
// when no flat store is configured.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a Store over the given pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.pool.QueryRow(ctx,
		`SELECT value FROM acme_storage
		  WHERE key = $1 AND (expires_at IS NULL OR expires_at > now())`,
		key).Scan(&value)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return nil, kv.ErrNotFound
	case err != nil:
		return nil, fmt.Errorf("%w: get %s: %v", kv.ErrUnavailable, key, err)
	}
	return value, nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO acme_storage (key, value, expires_at) VALUES ($1, $2, $3)
		 ON CONFLICT (key) DO UPDATE
		   SET value = EXCLUDED.value, expires_at = EXCLUDED.expires_at`,
		key, value, expiry(ttl))
	if err != nil {
		return fmt.Errorf("%w: set %s: %v", kv.ErrUnavailable, key, err)
	}
	return nil
}

func (s *Store) SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	// An expired row no longer blocks acquisition; the conditional upsert
	// keeps the whole check-and-set atomic.
	tag, err := s.pool.Exec(ctx,
		`INSERT INTO acme_storage (key, value, expires_at) VALUES ($1, $2, $3)
		 ON CONFLICT (key) DO UPDATE
		   SET value = EXCLUDED.value, expires_at = EXCLUDED.expires_at
		 WHERE acme_storage.expires_at IS NOT NULL AND acme_storage.expires_at <= now()`,
		key, value, expiry(ttl))
	if err != nil {
		return false, fmt.Errorf("%w: setnx %s: %v", kv.ErrUnavailable, key, err)
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM acme_storage WHERE key = $1`, key); err != nil {
		return fmt.Errorf("%w: delete %s: %v", kv.ErrUnavailable, key, err)
	}
	return nil
}

func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT key FROM acme_storage
		  WHERE key LIKE $1 AND (expires_at IS NULL OR expires_at > now())
		  ORDER BY key`,
		likePattern(prefix))
	if err != nil {
		return nil, fmt.Errorf("%w: list %s: %v", kv.ErrUnavailable, prefix, err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("%w: scan key: %v", kv.ErrUnavailable, err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list %s: %v", kv.ErrUnavailable, prefix, err)
	}
	return keys, nil
}

func expiry(ttl time.Duration) *time.Time {
	if ttl <= 0 {
		return nil
	}
	t := time.Now().Add(ttl)
	return &t
}

// likePattern escapes LIKE metacharacters so a prefix matches literally.
func likePattern(prefix string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(prefix) + "%"
}
