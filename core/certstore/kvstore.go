package certstore

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dmitrymomot/acmegate/core/kv"
)

// CertKeyPrefix namespaces the per-host certificate entries in the flat
// store. The prefix is part of the persisted key format and must stay
// stable across releases.
const CertKeyPrefix = "acme:cert_key:"

// certKeyEntry is the stored value format in DB-less mode. Field names are
// part of the on-disk contract.
type certKeyEntry struct {
	Cert string `json:"cert"`
	Key  string `json:"key"`
}

// KVStore implements Store on top of a flat key/value backend. There is no
// separate binding/record split in this mode: replacing a certificate is a
// single overwrite of the host's entry.
type KVStore struct {
	store kv.Store
}

// NewKVStore creates a Store backed by the given key/value store.
func NewKVStore(store kv.Store) *KVStore {
	return &KVStore{store: store}
}

func (s *KVStore) Fetch(ctx context.Context, host string) ([]byte, []byte, error) {
	value, err := s.store.Get(ctx, CertKeyPrefix+host)
	if err != nil {
		return nil, nil, err
	}

	var entry certKeyEntry
	if err := json.Unmarshal(value, &entry); err != nil {
		return nil, nil, fmt.Errorf("%w: cert entry for %s: %v", kv.ErrInvalidValue, host, err)
	}
	if entry.Cert == "" || entry.Key == "" {
		return nil, nil, fmt.Errorf("%w: cert entry for %s is missing fields", kv.ErrInvalidValue, host)
	}

	return []byte(entry.Key), []byte(entry.Cert), nil
}

func (s *KVStore) Save(ctx context.Context, host string, keyPEM, certPEM []byte) error {
	value, err := json.Marshal(certKeyEntry{
		Cert: string(certPEM),
		Key:  string(keyPEM),
	})
	if err != nil {
		return fmt.Errorf("encode cert entry for %s: %w", host, err)
	}
	return s.store.Set(ctx, CertKeyPrefix+host, value, 0)
}

func (s *KVStore) Hosts(ctx context.Context) ([]string, error) {
	keys, err := s.store.List(ctx, CertKeyPrefix)
	if err != nil {
		return nil, err
	}

	hosts := make([]string, 0, len(keys))
	for _, key := range keys {
		hosts = append(hosts, strings.TrimPrefix(key, CertKeyPrefix))
	}
	return hosts, nil
}
