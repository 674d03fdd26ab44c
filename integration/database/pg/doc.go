// Package pg provides the relational storage backend of the renewal
// engine: a pgx connection pool, the certificate/SNI DAO, a dedicated
// key/value table for account and renewal bookkeeping, and embedded goose
// migrations.
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	if err := pg.Migrate(ctx, pool); err != nil {
//		return err
//	}
//
//	certs := certstore.NewDAOStore(pg.NewDAO(pool), log)
//	store := pg.NewStore(pool) // kv.Store for bookkeeping and locks
//
// DAO methods join any transaction carried in the context via WithTx, so
// multi-record sequences can share one transaction without changing
// signatures.
package pg
