package reminder

import "errors"

// Common errors
var (
	// ErrRegistrarNil is returned when a nil registrar is provided
	ErrRegistrarNil = errors.New("registrar cannot be nil")

	// ErrPresenterNil is returned when a nil presenter is provided
	ErrPresenterNil = errors.New("presenter cannot be nil")

	// ErrLoanSourceNil is returned when a nil loan source is provided
	ErrLoanSourceNil = errors.New("loan source cannot be nil")

	// ErrSchedulerNil is returned when a nil scheduler is provided
	ErrSchedulerNil = errors.New("scheduler cannot be nil")

	// ErrInvalidLoan is returned when a loan is missing its book or user identity
	ErrInvalidLoan = errors.New("loan must carry a book ID and a user ID")
)
