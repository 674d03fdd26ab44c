package renewal

import "errors"

var (
	// ErrCycleInProgress is returned when another renewal cycle holds the
	// single-flight lock for the same account.
	ErrCycleInProgress = errors.New("renewal cycle already in progress")
)
