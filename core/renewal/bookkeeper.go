package renewal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dmitrymomot/acmegate/core/certstore"
	"github.com/dmitrymomot/acmegate/core/kv"
	"github.com/dmitrymomot/acmegate/pkg/logger"
)

// RenewConfigPrefix namespaces pending-renewal records. Part of the
// persisted key format; must stay stable across releases.
const RenewConfigPrefix = "acme:renew_config:"

// RenewEntry is the stored value format of a pending-renewal record.
// Field names are part of the on-disk contract.
type RenewEntry struct {
	Host     string `json:"host"`
	ExpireAt int64  `json:"expire_at"` // epoch seconds of the certificate being replaced
}

// Bookkeeper manages pending-renewal records: one per host awaiting
// certificate issuance, deleted on success or detected staleness.
type Bookkeeper struct {
	store kv.Store
	log   *slog.Logger
}

// NewBookkeeper creates a Bookkeeper over the given store.
func NewBookkeeper(store kv.Store, log *slog.Logger) *Bookkeeper {
	if log == nil {
		log = slog.Default()
	}
	return &Bookkeeper{
		store: store,
		log:   log.With(logger.Component("bookkeeper")),
	}
}

// MarkPending records that a renewal attempt is pending for host, replacing
// any previous record.
func (b *Bookkeeper) MarkPending(ctx context.Context, host string, expiresAt time.Time) error {
	value, err := json.Marshal(RenewEntry{Host: host, ExpireAt: expiresAt.Unix()})
	if err != nil {
		return fmt.Errorf("encode renew entry for %s: %w", host, err)
	}
	return b.store.Set(ctx, RenewConfigPrefix+host, value, 0)
}

// Pending returns host's pending-renewal record, or kv.ErrNotFound.
func (b *Bookkeeper) Pending(ctx context.Context, host string) (*RenewEntry, error) {
	raw, err := b.store.Get(ctx, RenewConfigPrefix+host)
	if err != nil {
		return nil, err
	}
	var entry RenewEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, fmt.Errorf("%w: renew entry for %s: %v", kv.ErrInvalidValue, host, err)
	}
	return &entry, nil
}

// Clear removes host's pending-renewal record. Clearing an absent record is
// a no-op.
func (b *Bookkeeper) Clear(ctx context.Context, host string) error {
	return b.store.Delete(ctx, RenewConfigPrefix+host)
}

// Reconcile walks every pending-renewal record and deletes the ones whose
// certificate no longer exists, regardless of how it disappeared. Records
// for hosts with a live certificate are kept; corrupt records and corrupt
// certificates are reported, not deleted. Running Reconcile twice with no
// intervening writes performs no further deletions.
func (b *Bookkeeper) Reconcile(ctx context.Context, certs certstore.Store) error {
	keys, err := b.store.List(ctx, RenewConfigPrefix)
	if err != nil {
		return fmt.Errorf("list renew entries: %w", err)
	}

	var errs []error
	for _, key := range keys {
		host := strings.TrimPrefix(key, RenewConfigPrefix)

		if _, err := b.Pending(ctx, host); err != nil {
			if errors.Is(err, kv.ErrNotFound) {
				continue // removed concurrently
			}
			errs = append(errs, err)
			continue
		}

		_, _, err := certs.Fetch(ctx, host)
		switch {
		case errors.Is(err, kv.ErrNotFound):
			if err := b.store.Delete(ctx, key); err != nil {
				errs = append(errs, fmt.Errorf("delete stale renew entry for %s: %w", host, err))
				continue
			}
			b.log.Info("removed stale renew entry", logger.Host(host))
		case err != nil:
			errs = append(errs, fmt.Errorf("check certificate for %s: %w", host, err))
		}
	}
	return errors.Join(errs...)
}
