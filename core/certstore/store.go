package certstore

import "context"

// Store is what the renewal core reads and writes certificates through.
// Two implementations exist: DAOStore over a relational backend and KVStore
// over a flat key/value backend (DB-less mode). Callers never branch on
// backend identity past construction.
type Store interface {
	// Fetch returns the key and certificate PEM stored for host, or
	// kv.ErrNotFound when the host has no certificate.
	Fetch(ctx context.Context, host string) (keyPEM, certPEM []byte, err error)

	// Save durably replaces host's certificate material. After a successful
	// return exactly one live certificate is reachable from the host, and
	// the previous one (if any) is no longer retrievable.
	Save(ctx context.Context, host string, keyPEM, certPEM []byte) error

	// Hosts enumerates all hostnames managed by the renewal engine.
	Hosts(ctx context.Context) ([]string, error)
}
