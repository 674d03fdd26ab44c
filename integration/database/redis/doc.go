// Package redis provides Redis client initialization, health checking and
// the flat key/value storage backend used by the renewal engine in DB-less
// mode.
//
// Connect validates the URL, attempts the connection with retries and
// verifies it with a ping before returning the client. Store maps Redis
// semantics onto the kv.Store contract: absent keys become kv.ErrNotFound,
// transport failures become kv.ErrUnavailable, prefix listing runs on SCAN
// with a configurable batch size.
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	store := redis.NewStore(client, cfg.ScanBatchSize)
//	certs := certstore.NewKVStore(store)
//
// Both redis:// and rediss:// (TLS) URL schemes are supported.
package redis
