package library

import "errors"

var (
	ErrBookNotFound      = errors.New("library.errors.book_not_found")
	ErrBookExists        = errors.New("library.errors.book_already_exists")
	ErrNoCopiesAvailable = errors.New("library.errors.no_copies_available")
	ErrAlreadyBorrowed   = errors.New("library.errors.already_borrowed_by_user")
	ErrNotBorrowed       = errors.New("library.errors.not_borrowed_by_user")
	ErrWishExists        = errors.New("library.errors.wish_already_exists")
	ErrWishNotFound      = errors.New("library.errors.wish_not_found")
	ErrInvalidBook       = errors.New("library.errors.invalid_book")
	ErrInvalidAssignment = errors.New("library.errors.invalid_assignment")
	ErrRepositoryNil     = errors.New("library.errors.repository_is_nil")
	ErrSchedulerNil      = errors.New("library.errors.scheduler_is_nil")
)
