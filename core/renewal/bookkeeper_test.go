package renewal_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/acmegate/core/certstore"
	"github.com/dmitrymomot/acmegate/core/kv"
	"github.com/dmitrymomot/acmegate/core/renewal"
)

func TestMarkPendingRoundtrip(t *testing.T) {
	ctx := context.Background()
	backend := kv.NewMemory()
	books := renewal.NewBookkeeper(backend, nil)

	expiresAt := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, books.MarkPending(ctx, "example.com", expiresAt))

	entry, err := books.Pending(ctx, "example.com")
	require.NoError(t, err)
	assert.Equal(t, "example.com", entry.Host)
	assert.Equal(t, expiresAt.Unix(), entry.ExpireAt)

	// Stored encoding uses the stable field names.
	raw, err := backend.Get(ctx, renewal.RenewConfigPrefix+"example.com")
	require.NoError(t, err)
	var fields map[string]any
	require.NoError(t, json.Unmarshal(raw, &fields))
	assert.Contains(t, fields, "host")
	assert.Contains(t, fields, "expire_at")

	require.NoError(t, books.Clear(ctx, "example.com"))
	_, err = books.Pending(ctx, "example.com")
	assert.ErrorIs(t, err, kv.ErrNotFound)

	// Clearing again is a no-op.
	require.NoError(t, books.Clear(ctx, "example.com"))
}

func TestReconcileRemovesStaleEntry(t *testing.T) {
	// Entry for a host whose certificate does not exist anywhere is removed
	// without any issuance.
	ctx := context.Background()
	backend := kv.NewMemory()
	certs := certstore.NewKVStore(backend)
	books := renewal.NewBookkeeper(backend, nil)

	require.NoError(t, books.MarkPending(ctx, "dne.example.com", time.Now().Add(-time.Hour)))

	require.NoError(t, books.Reconcile(ctx, certs))

	_, err := backend.Get(ctx, renewal.RenewConfigPrefix+"dne.example.com")
	assert.ErrorIs(t, err, kv.ErrNotFound)
}

func TestReconcileKeepsEntryWithLiveCertificate(t *testing.T) {
	ctx := context.Background()
	backend := kv.NewMemory()
	certs := certstore.NewKVStore(backend)
	books := renewal.NewBookkeeper(backend, nil)

	keyPEM, certPEM := genCert(t, "live.example.com", time.Now().Add(60*24*time.Hour))
	require.NoError(t, certs.Save(ctx, "live.example.com", keyPEM, certPEM))
	require.NoError(t, books.MarkPending(ctx, "live.example.com", time.Now().Add(60*24*time.Hour)))

	require.NoError(t, books.Reconcile(ctx, certs))

	_, err := books.Pending(ctx, "live.example.com")
	assert.NoError(t, err)
}

func TestReconcileIdempotent(t *testing.T) {
	ctx := context.Background()
	backend := kv.NewMemory()
	certs := certstore.NewKVStore(backend)
	books := renewal.NewBookkeeper(backend, nil)

	keyPEM, certPEM := genCert(t, "live.example.com", time.Now().Add(60*24*time.Hour))
	require.NoError(t, certs.Save(ctx, "live.example.com", keyPEM, certPEM))
	require.NoError(t, books.MarkPending(ctx, "live.example.com", time.Now()))
	require.NoError(t, books.MarkPending(ctx, "stale.example.com", time.Now()))

	require.NoError(t, books.Reconcile(ctx, certs))
	after, err := backend.List(ctx, "")
	require.NoError(t, err)

	// Second run with no intervening writes: same state, no error.
	require.NoError(t, books.Reconcile(ctx, certs))
	again, err := backend.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, after, again)
}

func TestReconcileCorruptEntryLeftInPlace(t *testing.T) {
	ctx := context.Background()
	backend := kv.NewMemory()
	certs := certstore.NewKVStore(backend)
	books := renewal.NewBookkeeper(backend, nil)

	key := renewal.RenewConfigPrefix + "corrupt.example.com"
	require.NoError(t, backend.Set(ctx, key, []byte("{broken"), 0))

	err := books.Reconcile(ctx, certs)
	require.Error(t, err)
	assert.ErrorIs(t, err, kv.ErrInvalidValue)

	// Corruption is never treated as staleness: the entry survives.
	_, err = backend.Get(ctx, key)
	assert.NoError(t, err)
}
