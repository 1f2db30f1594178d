package library

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jhonnyxt/loantracker/pkg/reminder"
)

// MemoryRepository implements Repository in memory for tests and local
// development. It mirrors the Mongo implementation's semantics, including
// reminder.LoanSource.
type MemoryRepository struct {
	mu     sync.RWMutex
	books  map[string]Book
	wishes map[string]WishItem
}

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		books:  make(map[string]Book),
		wishes: make(map[string]WishItem),
	}
}

// CreateBook implements Repository.
func (r *MemoryRepository) CreateBook(ctx context.Context, book Book) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.books[book.ID]; ok {
		return ErrBookExists
	}
	r.books[book.ID] = book
	return nil
}

// GetBook implements Repository.
func (r *MemoryRepository) GetBook(ctx context.Context, bookID string) (*Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	book, ok := r.books[bookID]
	if !ok {
		return nil, ErrBookNotFound
	}
	// Copy the assignment slice so callers cannot mutate stored state.
	book.Assignments = append([]Assignment(nil), book.Assignments...)
	return &book, nil
}

// ListBooks implements Repository.
func (r *MemoryRepository) ListBooks(ctx context.Context) ([]Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	books := make([]Book, 0, len(r.books))
	for _, b := range r.books {
		books = append(books, b)
	}
	sort.Slice(books, func(i, j int) bool { return books[i].Title < books[j].Title })
	return books, nil
}

// UpdateBook implements Repository.
func (r *MemoryRepository) UpdateBook(ctx context.Context, book Book) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.books[book.ID]; !ok {
		return ErrBookNotFound
	}
	r.books[book.ID] = book
	return nil
}

// DeleteBook implements Repository.
func (r *MemoryRepository) DeleteBook(ctx context.Context, bookID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.books[bookID]; !ok {
		return ErrBookNotFound
	}
	delete(r.books, bookID)
	for id, w := range r.wishes {
		if w.BookID == bookID {
			delete(r.wishes, id)
		}
	}
	return nil
}

// BooksWithAssignments implements Repository.
func (r *MemoryRepository) BooksWithAssignments(ctx context.Context) ([]Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var books []Book
	for _, b := range r.books {
		if len(b.Assignments) > 0 {
			books = append(books, b)
		}
	}
	sort.Slice(books, func(i, j int) bool { return books[i].ID < books[j].ID })
	return books, nil
}

// ActiveLoans implements reminder.LoanSource.
func (r *MemoryRepository) ActiveLoans(ctx context.Context) ([]reminder.BookRecord, error) {
	books, err := r.BooksWithAssignments(ctx)
	if err != nil {
		return nil, err
	}

	records := make([]reminder.BookRecord, 0, len(books))
	for _, book := range books {
		record := reminder.BookRecord{
			BookID: book.ID,
			Title:  book.Title,
			Author: book.Author,
		}
		for _, a := range book.Assignments {
			record.Assignees = append(record.Assignees, reminder.AssigneeRecord{
				UserID:   a.UserID,
				UserName: a.UserName,
				DueAt:    a.DueAt,
			})
		}
		records = append(records, record)
	}
	return records, nil
}

// AddWish implements Repository.
func (r *MemoryRepository) AddWish(ctx context.Context, wish WishItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, w := range r.wishes {
		if w.UserID == wish.UserID && w.BookID == wish.BookID && !w.Fulfilled {
			return ErrWishExists
		}
	}
	r.wishes[wish.ID] = wish
	return nil
}

// WishesForBook implements Repository.
func (r *MemoryRepository) WishesForBook(ctx context.Context, bookID string) ([]WishItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var wishes []WishItem
	for _, w := range r.wishes {
		if w.BookID == bookID && !w.Fulfilled {
			wishes = append(wishes, w)
		}
	}
	sort.Slice(wishes, func(i, j int) bool { return wishes[i].ID < wishes[j].ID })
	return wishes, nil
}

// WishesForUser implements Repository.
func (r *MemoryRepository) WishesForUser(ctx context.Context, userID string) ([]WishItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var wishes []WishItem
	for _, w := range r.wishes {
		if w.UserID == userID {
			wishes = append(wishes, w)
		}
	}
	sort.Slice(wishes, func(i, j int) bool { return wishes[i].CreatedAt.After(wishes[j].CreatedAt) })
	return wishes, nil
}

// MarkWishFulfilled implements Repository.
func (r *MemoryRepository) MarkWishFulfilled(ctx context.Context, wishID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	w, ok := r.wishes[wishID]
	if !ok {
		return ErrWishNotFound
	}
	now := time.Now()
	w.Fulfilled = true
	w.NotifiedAt = &now
	r.wishes[wishID] = w
	return nil
}

// RemoveWish implements Repository.
func (r *MemoryRepository) RemoveWish(ctx context.Context, wishID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.wishes[wishID]; !ok {
		return ErrWishNotFound
	}
	delete(r.wishes, wishID)
	return nil
}
