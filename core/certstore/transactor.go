package certstore

import "context"

// Transactor is optionally implemented by DAOs whose backend supports
// transactions. InTx runs fn with a transaction-carrying context and
// commits when fn returns nil.
type Transactor interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}
