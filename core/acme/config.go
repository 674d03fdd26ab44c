package acme

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/go-acme/lego/v4/lego"
)

// Storage mode identifiers. The mode is resolved to a concrete backend once
// at construction time; the renewal core never branches on it afterwards.
const (
	StorageMemory   = "memory"
	StorageRedis    = "redis"
	StoragePostgres = "postgres"
)

// Config describes one ACME account and its renewal policy.
type Config struct {
	// AccountEmail is the contact email of the ACME account.
	AccountEmail string `env:"ACME_ACCOUNT_EMAIL"`

	// APIURI is the ACME directory endpoint.
	APIURI string `env:"ACME_API_URI" envDefault:"https://acme-v02.api.letsencrypt.org/directory"`

	// Storage selects the backend: memory, redis or postgres.
	Storage string `env:"ACME_STORAGE" envDefault:"memory"`

	// RenewThresholdDays is how long before expiry a certificate becomes
	// due for renewal.
	RenewThresholdDays int `env:"ACME_RENEW_THRESHOLD_DAYS" envDefault:"30"`
}

// Validate checks the configuration, naming the offending field.
func (c *Config) Validate() error {
	if c.AccountEmail == "" {
		return ErrEmailRequired
	}
	if c.RenewThresholdDays <= 0 {
		return fmt.Errorf("%w: %d days", ErrInvalidThreshold, c.RenewThresholdDays)
	}
	switch c.Storage {
	case StorageMemory, StorageRedis, StoragePostgres:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStorage, c.Storage)
	}
	return nil
}

// RenewThreshold returns the renewal threshold as a duration.
func (c *Config) RenewThreshold() time.Duration {
	return time.Duration(c.RenewThresholdDays) * 24 * time.Hour
}

// AccountName derives the stable account identifier from the email and the
// directory endpoint. The same configuration always maps to the same name,
// so cached keys and cycle locks survive restarts.
func (c *Config) AccountName() string {
	uri := c.APIURI
	if uri == "" {
		uri = lego.LEDirectoryProduction
	}
	sum := sha256.Sum256([]byte(c.AccountEmail + "|" + uri))
	return hex.EncodeToString(sum[:])
}
