// Package kv defines the key/value storage contract shared by every backend
// of the certificate renewal engine, plus an in-memory implementation.
//
// The renewal core is written against the Store interface only; which
// backend serves it is decided once at construction time. Three
// implementations exist:
//
//   - kv.Memory (this package): in-process map, single-node deployments and tests
//   - integration/database/redis: flat external store for DB-less multi-node mode
//   - integration/database/pg: dedicated key/value table next to the relational DAO
//
// # Error Taxonomy
//
// All implementations map their backend failures onto three sentinels so
// callers never branch on backend identity:
//
//   - ErrNotFound: key absent, callers treat as "nothing to do"
//   - ErrUnavailable: backend unreachable, fatal to the current operation
//   - ErrInvalidValue: stored value undecodable, fatal, never reported as absence
//
// # Usage
//
//	store := kv.NewMemory()
//	if err := store.Set(ctx, "acme:cert_key:example.com", payload, 0); err != nil {
//		return err
//	}
//
//	value, err := store.Get(ctx, "acme:cert_key:example.com")
//	switch {
//	case errors.Is(err, kv.ErrNotFound):
//		// no certificate yet
//	case err != nil:
//		return err
//	}
package kv
