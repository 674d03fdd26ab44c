package pg

import "errors"

var (
	ErrFailedToParseConnString = errors.New("failed to parse postgres connection string")
	ErrNotReady                = errors.New("postgres did not become ready within the given time period")
	ErrEmptyConnectionURL      = errors.New("empty postgres connection URL")
	ErrHealthcheckFailed       = errors.New("postgres healthcheck failed")
	ErrMigrationFailed         = errors.New("postgres migration failed")
)
