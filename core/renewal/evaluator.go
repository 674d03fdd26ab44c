package renewal

import (
	"context"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrymomot/acmegate/core/certstore"
	"github.com/dmitrymomot/acmegate/core/kv"
)

// Decision is the outcome of evaluating one host.
type Decision struct {
	// KeyPEM is the host's current private key, set only when renewal is
	// due so the caller can reuse it without a second lookup.
	KeyPEM []byte

	// DueForRenewal is true when the certificate expires within the
	// threshold (boundary inclusive).
	DueForRenewal bool

	// ShouldCleanup is true when a pending renewal record exists but the
	// certificate it refers to is gone.
	ShouldCleanup bool

	// ExpiresAt is the certificate's expiry, zero when no certificate was
	// found.
	ExpiresAt time.Time
}

// Due reports whether a certificate expiring at expiresAt must be renewed
// given the current time and threshold. The boundary is inclusive: a
// certificate exactly threshold away from expiry is due.
func Due(expiresAt, now time.Time, threshold time.Duration) bool {
	return expiresAt.Sub(now) <= threshold
}

// Evaluate fetches host's certificate state and decides between renewal,
// cleanup and no action. A corrupt stored certificate is an error, never a
// cleanup signal.
func Evaluate(ctx context.Context, certs certstore.Store, books *Bookkeeper, host string, now time.Time, threshold time.Duration) (Decision, error) {
	keyPEM, certPEM, err := certs.Fetch(ctx, host)
	switch {
	case errors.Is(err, kv.ErrNotFound):
		_, err := books.Pending(ctx, host)
		switch {
		case errors.Is(err, kv.ErrNotFound):
			return Decision{}, nil
		case err != nil:
			return Decision{}, err
		}
		return Decision{ShouldCleanup: true}, nil
	case err != nil:
		return Decision{}, err
	}

	expiresAt, err := certExpiry(certPEM)
	if err != nil {
		return Decision{}, fmt.Errorf("certificate for %s: %w", host, err)
	}

	decision := Decision{ExpiresAt: expiresAt}
	if Due(expiresAt, now, threshold) {
		decision.DueForRenewal = true
		decision.KeyPEM = keyPEM
	}
	return decision, nil
}

func certExpiry(certPEM []byte) (time.Time, error) {
	block, _ := pem.Decode(certPEM)
	if block == nil {
		return time.Time{}, fmt.Errorf("%w: no PEM block", kv.ErrInvalidValue)
	}
	cert, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", kv.ErrInvalidValue, err)
	}
	return cert.NotAfter, nil
}
