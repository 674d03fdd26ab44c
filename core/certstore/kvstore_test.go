package certstore_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/acmegate/core/certstore"
	"github.com/dmitrymomot/acmegate/core/kv"
)

func TestKVStoreSaveFetch(t *testing.T) {
	ctx := context.Background()
	backend := kv.NewMemory()
	store := certstore.NewKVStore(backend)

	_, _, err := store.Fetch(ctx, "example.com")
	assert.ErrorIs(t, err, kv.ErrNotFound)

	require.NoError(t, store.Save(ctx, "example.com", []byte("key-pem"), []byte("cert-pem")))

	keyPEM, certPEM, err := store.Fetch(ctx, "example.com")
	require.NoError(t, err)
	assert.Equal(t, []byte("key-pem"), keyPEM)
	assert.Equal(t, []byte("cert-pem"), certPEM)

	// Replace-on-write: a second save is a single overwrite.
	require.NoError(t, store.Save(ctx, "example.com", []byte("key-2"), []byte("cert-2")))
	keyPEM, certPEM, err = store.Fetch(ctx, "example.com")
	require.NoError(t, err)
	assert.Equal(t, []byte("key-2"), keyPEM)
	assert.Equal(t, []byte("cert-2"), certPEM)
}

func TestKVStoreHosts(t *testing.T) {
	ctx := context.Background()
	backend := kv.NewMemory()
	store := certstore.NewKVStore(backend)

	hosts, err := store.Hosts(ctx)
	require.NoError(t, err)
	assert.Empty(t, hosts)

	require.NoError(t, store.Save(ctx, "b.example.com", []byte("k"), []byte("c")))
	require.NoError(t, store.Save(ctx, "a.example.com", []byte("k"), []byte("c")))

	hosts, err = store.Hosts(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.example.com", "b.example.com"}, hosts)
}

func TestKVStoreCorruptEntry(t *testing.T) {
	ctx := context.Background()
	backend := kv.NewMemory()
	store := certstore.NewKVStore(backend)

	require.NoError(t, backend.Set(ctx, certstore.CertKeyPrefix+"bad.example.com", []byte("{not json"), 0))

	_, _, err := store.Fetch(ctx, "bad.example.com")
	assert.ErrorIs(t, err, kv.ErrInvalidValue)
	assert.NotErrorIs(t, err, kv.ErrNotFound)

	// Missing fields are corruption too, never absence.
	require.NoError(t, backend.Set(ctx, certstore.CertKeyPrefix+"empty.example.com", []byte(`{"cert":"","key":""}`), 0))
	_, _, err = store.Fetch(ctx, "empty.example.com")
	assert.ErrorIs(t, err, kv.ErrInvalidValue)
}
