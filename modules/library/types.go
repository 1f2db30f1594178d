package library

import "time"

// Book is one catalog entry. Quantity counts owned copies; Assignments holds
// the currently borrowed ones, so available copies = Quantity minus
// len(Assignments).
type Book struct {
	ID          string       `json:"id" bson:"_id"`
	Title       string       `json:"title" bson:"title"`
	Author      string       `json:"author" bson:"author"`
	Categories  []string     `json:"categories,omitempty" bson:"categories,omitempty"`
	Quantity    int          `json:"quantity" bson:"quantity"`
	Assignments []Assignment `json:"assignments,omitempty" bson:"assignments,omitempty"`
	CreatedAt   time.Time    `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at" bson:"updated_at"`
}

// Available reports how many copies are free to borrow.
func (b Book) Available() int {
	return b.Quantity - len(b.Assignments)
}

// AssignmentOf returns the assignment held by the given user, if any.
func (b Book) AssignmentOf(userID string) (Assignment, bool) {
	for _, a := range b.Assignments {
		if a.UserID == userID {
			return a, true
		}
	}
	return Assignment{}, false
}

// Assignment is one borrowed copy. DueAt is nil when no due date was
// recorded, which legacy data allows.
type Assignment struct {
	UserID     string     `json:"user_id" bson:"user_id"`
	UserName   string     `json:"user_name" bson:"user_name"`
	Email      string     `json:"email,omitempty" bson:"email,omitempty"`
	DueAt      *time.Time `json:"due_at,omitempty" bson:"due_at,omitempty"`
	AssignedAt time.Time  `json:"assigned_at" bson:"assigned_at"`
}

// WishItem records that a user wants a book that currently has no free
// copies. Fulfilled wishes are kept for history but never re-notified.
type WishItem struct {
	ID         string     `json:"id" bson:"_id"`
	UserID     string     `json:"user_id" bson:"user_id"`
	UserEmail  string     `json:"user_email,omitempty" bson:"user_email,omitempty"`
	BookID     string     `json:"book_id" bson:"book_id"`
	Fulfilled  bool       `json:"fulfilled" bson:"fulfilled"`
	CreatedAt  time.Time  `json:"created_at" bson:"created_at"`
	NotifiedAt *time.Time `json:"notified_at,omitempty" bson:"notified_at,omitempty"`
}

// UserLoan is the flattened per-user view of an assignment, used by the
// loans listing endpoints.
type UserLoan struct {
	BookID    string     `json:"book_id"`
	BookTitle string     `json:"book_title"`
	Author    string     `json:"author"`
	UserID    string     `json:"user_id"`
	UserName  string     `json:"user_name"`
	DueAt     *time.Time `json:"due_at,omitempty"`
}
