package notifications

import "errors"

// Common errors
var (
	// ErrStorageNil is returned when a nil storage is provided
	ErrStorageNil = errors.New("storage cannot be nil")

	// ErrNotFound is returned when a notification does not exist
	ErrNotFound = errors.New("notification not found")

	// ErrInvalidNotification is returned when a notification misses its ID or user
	ErrInvalidNotification = errors.New("notification must carry an ID and a user ID")
)
