package acme

import (
	"errors"
	"fmt"
)

var (
	// ErrAccountNotFound matches AccountNotFoundError values via errors.Is.
	ErrAccountNotFound = errors.New("account not found in storage")

	// ErrEmailRequired is returned when the account email is missing.
	ErrEmailRequired = errors.New("account email is required")

	// ErrInvalidThreshold is returned for a non-positive renewal threshold.
	ErrInvalidThreshold = errors.New("renew threshold must be positive")

	// ErrUnknownStorage is returned for an unrecognized storage mode.
	ErrUnknownStorage = errors.New("unknown storage mode")
)

// AccountNotFoundError reports a configuration referencing an ACME account
// whose key material is absent from storage.
type AccountNotFoundError struct {
	Email string
}

func (e *AccountNotFoundError) Error() string {
	return fmt.Sprintf("account %s not found in storage", e.Email)
}

func (e *AccountNotFoundError) Is(target error) bool {
	return target == ErrAccountNotFound
}
