package acme

import (
	"context"
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"errors"
	"fmt"
	"sync"

	"github.com/go-acme/lego/v4/certcrypto"
	"github.com/go-acme/lego/v4/registration"

	"github.com/dmitrymomot/acmegate/core/kv"
)

// AccountPrefix namespaces stored ACME account records. Part of the
// persisted key format; must stay stable across releases.
const AccountPrefix = "acme:account:"

// accountRecord is the stored value format for an account. Field names are
// part of the on-disk contract.
type accountRecord struct {
	Key string `json:"key"` // PEM-encoded private key
	KID string `json:"kid"` // account URI assigned at registration
}

// account implements lego's registration.User.
type account struct {
	email        string
	key          crypto.PrivateKey
	registration *registration.Resource
}

func (a *account) GetEmail() string                        { return a.email }
func (a *account) GetRegistration() *registration.Resource { return a.registration }
func (a *account) GetPrivateKey() crypto.PrivateKey        { return a.key }

// accountCache holds decoded account records process-wide, keyed by account
// name. Concurrent populators may race benignly; the records are identical
// and at most one redundant storage read happens.
var accountCache sync.Map // string -> accountRecord

// loadAccount fetches the account record for cfg, preferring the cache.
func loadAccount(ctx context.Context, store kv.Store, cfg Config) (*account, error) {
	name := cfg.AccountName()

	rec, ok := cachedAccount(name)
	if !ok {
		raw, err := store.Get(ctx, AccountPrefix+name)
		switch {
		case err == nil:
		case errors.Is(err, kv.ErrNotFound):
			return nil, &AccountNotFoundError{Email: cfg.AccountEmail}
		default:
			return nil, fmt.Errorf("load account %s: %w", cfg.AccountEmail, err)
		}

		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("%w: account record for %s: %v", kv.ErrInvalidValue, cfg.AccountEmail, err)
		}
		if rec.Key == "" {
			return nil, fmt.Errorf("%w: account record for %s has no key", kv.ErrInvalidValue, cfg.AccountEmail)
		}
		accountCache.Store(name, rec)
	}

	key, err := certcrypto.ParsePEMPrivateKey([]byte(rec.Key))
	if err != nil {
		return nil, fmt.Errorf("%w: account key for %s: %v", kv.ErrInvalidValue, cfg.AccountEmail, err)
	}

	acct := &account{email: cfg.AccountEmail, key: key}
	if rec.KID != "" {
		acct.registration = &registration.Resource{URI: rec.KID}
	}
	return acct, nil
}

func cachedAccount(name string) (accountRecord, bool) {
	value, ok := accountCache.Load(name)
	if !ok {
		return accountRecord{}, false
	}
	return value.(accountRecord), true
}

// storeAccount persists the record and primes the cache.
func storeAccount(ctx context.Context, store kv.Store, name string, rec accountRecord) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode account record: %w", err)
	}
	if err := store.Set(ctx, AccountPrefix+name, raw, 0); err != nil {
		return fmt.Errorf("store account record: %w", err)
	}
	accountCache.Store(name, rec)
	return nil
}

// newAccountKey generates a fresh EC P-256 account key in PEM form.
func newAccountKey() (crypto.PrivateKey, string, error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, "", fmt.Errorf("generate account key: %w", err)
	}
	der, err := x509.MarshalECPrivateKey(key)
	if err != nil {
		return nil, "", fmt.Errorf("encode account key: %w", err)
	}
	pemBytes := pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: der})
	return key, string(pemBytes), nil
}
