package library

import "context"

// Repository handles catalog and wishlist persistence. Implementations must
// return ErrBookNotFound / ErrWishNotFound for missing records so callers
// can rely on errors.Is.
type Repository interface {
	// CreateBook stores a new book. Returns ErrBookExists when the ID is
	// already taken.
	CreateBook(ctx context.Context, book Book) error

	// GetBook retrieves a book by ID.
	GetBook(ctx context.Context, bookID string) (*Book, error)

	// ListBooks returns the whole catalog, title order.
	ListBooks(ctx context.Context) ([]Book, error)

	// UpdateBook replaces a book's stored state.
	UpdateBook(ctx context.Context, book Book) error

	// DeleteBook removes a book and its wishes.
	DeleteBook(ctx context.Context, bookID string) error

	// BooksWithAssignments returns only books that currently have at least
	// one assignment. Used for loan listings and boot-time rehydration.
	BooksWithAssignments(ctx context.Context) ([]Book, error)

	// AddWish stores a wishlist entry. Returns ErrWishExists when the user
	// already has an unfulfilled wish for the book.
	AddWish(ctx context.Context, wish WishItem) error

	// WishesForBook returns unfulfilled wishes for a book.
	WishesForBook(ctx context.Context, bookID string) ([]WishItem, error)

	// WishesForUser returns all wishes of a user, newest first.
	WishesForUser(ctx context.Context, userID string) ([]WishItem, error)

	// MarkWishFulfilled marks a wish fulfilled and records the notify time.
	MarkWishFulfilled(ctx context.Context, wishID string) error

	// RemoveWish deletes a wish.
	RemoveWish(ctx context.Context, wishID string) error
}
