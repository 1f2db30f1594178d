package alarm

import "errors"

// Common errors
var (
	// ErrFireFuncNil is returned when a nil fire callback is provided
	ErrFireFuncNil = errors.New("fire callback cannot be nil")

	// ErrExactUnavailable is returned by RegisterExact when exact scheduling is disabled
	ErrExactUnavailable = errors.New("exact alarm scheduling is not permitted")

	// ErrPastFireTime is returned when the requested fire instant is not in the future
	ErrPastFireTime = errors.New("fire time must be in the future")

	// ErrRegistryClosed is returned when registering on a closed registry
	ErrRegistryClosed = errors.New("alarm registry is closed")
)
