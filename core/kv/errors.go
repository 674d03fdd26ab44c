package kv

import "errors"

var (
	// ErrNotFound is returned when a key is absent. Callers must treat this
	// as "no value", not as a failure.
	ErrNotFound = errors.New("key not found")

	// ErrUnavailable is returned when the backing store cannot be reached.
	// It is fatal to the calling operation; retries are left to the caller's
	// scheduler.
	ErrUnavailable = errors.New("storage unavailable")

	// ErrInvalidValue is returned when a stored value cannot be decoded.
	// It must never be coerced into ErrNotFound, so data corruption is not
	// masked as absence.
	ErrInvalidValue = errors.New("invalid stored value")
)
