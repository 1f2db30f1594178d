package library

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/jhonnyxt/loantracker/pkg/reminder"
)

const (
	booksCollection  = "books"
	wishesCollection = "wishes"
)

// MongoRepository implements Repository on top of a MongoDB database. It
// also implements reminder.LoanSource, so the same store feeds boot-time
// reminder rehydration.
type MongoRepository struct {
	books  *mongo.Collection
	wishes *mongo.Collection
}

// NewMongoRepository creates a repository over the given database.
func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{
		books:  db.Collection(booksCollection),
		wishes: db.Collection(wishesCollection),
	}
}

// CreateBook implements Repository.
func (r *MongoRepository) CreateBook(ctx context.Context, book Book) error {
	if _, err := r.books.InsertOne(ctx, book); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrBookExists
		}
		return fmt.Errorf("failed to insert book: %w", err)
	}
	return nil
}

// GetBook implements Repository.
func (r *MongoRepository) GetBook(ctx context.Context, bookID string) (*Book, error) {
	var book Book
	if err := r.books.FindOne(ctx, bson.M{"_id": bookID}).Decode(&book); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("failed to fetch book: %w", err)
	}
	return &book, nil
}

// ListBooks implements Repository.
func (r *MongoRepository) ListBooks(ctx context.Context) ([]Book, error) {
	cur, err := r.books.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "title", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}
	var books []Book
	if err := cur.All(ctx, &books); err != nil {
		return nil, fmt.Errorf("failed to decode books: %w", err)
	}
	return books, nil
}

// UpdateBook implements Repository.
func (r *MongoRepository) UpdateBook(ctx context.Context, book Book) error {
	res, err := r.books.ReplaceOne(ctx, bson.M{"_id": book.ID}, book)
	if err != nil {
		return fmt.Errorf("failed to update book: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrBookNotFound
	}
	return nil
}

// DeleteBook implements Repository. Wishes for the book are removed with it.
func (r *MongoRepository) DeleteBook(ctx context.Context, bookID string) error {
	res, err := r.books.DeleteOne(ctx, bson.M{"_id": bookID})
	if err != nil {
		return fmt.Errorf("failed to delete book: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrBookNotFound
	}
	if _, err := r.wishes.DeleteMany(ctx, bson.M{"book_id": bookID}); err != nil {
		return fmt.Errorf("failed to delete wishes for book: %w", err)
	}
	return nil
}

// BooksWithAssignments implements Repository.
func (r *MongoRepository) BooksWithAssignments(ctx context.Context) ([]Book, error) {
	filter := bson.M{"assignments.0": bson.M{"$exists": true}}
	cur, err := r.books.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list assigned books: %w", err)
	}
	var books []Book
	if err := cur.All(ctx, &books); err != nil {
		return nil, fmt.Errorf("failed to decode assigned books: %w", err)
	}
	return books, nil
}

// ActiveLoans implements reminder.LoanSource by projecting the assignment
// state of every borrowed book into the reminder core's snapshot shape.
func (r *MongoRepository) ActiveLoans(ctx context.Context) ([]reminder.BookRecord, error) {
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
func (r *MongoRepository) AddWish(ctx context.Context, wish WishItem) error {
	existing := r.wishes.FindOne(ctx, bson.M{
		"user_id":   wish.UserID,
		"book_id":   wish.BookID,
		"fulfilled": false,
	})
	if err := existing.Err(); err == nil {
		return ErrWishExists
	} else if !errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("failed to check existing wish: %w", err)
	}

	if _, err := r.wishes.InsertOne(ctx, wish); err != nil {
		return fmt.Errorf("failed to insert wish: %w", err)
	}
	return nil
}

// WishesForBook implements Repository.
func (r *MongoRepository) WishesForBook(ctx context.Context, bookID string) ([]WishItem, error) {
	cur, err := r.wishes.Find(ctx, bson.M{"book_id": bookID, "fulfilled": false})
	if err != nil {
		return nil, fmt.Errorf("failed to list wishes: %w", err)
	}
	var wishes []WishItem
	if err := cur.All(ctx, &wishes); err != nil {
		return nil, fmt.Errorf("failed to decode wishes: %w", err)
	}
	return wishes, nil
}

// WishesForUser implements Repository.
func (r *MongoRepository) WishesForUser(ctx context.Context, userID string) ([]WishItem, error) {
	cur, err := r.wishes.Find(ctx, bson.M{"user_id": userID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list user wishes: %w", err)
	}
	var wishes []WishItem
	if err := cur.All(ctx, &wishes); err != nil {
		return nil, fmt.Errorf("failed to decode user wishes: %w", err)
	}
	return wishes, nil
}

// MarkWishFulfilled implements Repository.
func (r *MongoRepository) MarkWishFulfilled(ctx context.Context, wishID string) error {
	now := time.Now()
	res, err := r.wishes.UpdateOne(ctx, bson.M{"_id": wishID}, bson.M{
		"$set": bson.M{"fulfilled": true, "notified_at": now},
	})
	if err != nil {
		return fmt.Errorf("failed to mark wish fulfilled: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrWishNotFound
	}
	return nil
}

// RemoveWish implements Repository.
func (r *MongoRepository) RemoveWish(ctx context.Context, wishID string) error {
	res, err := r.wishes.DeleteOne(ctx, bson.M{"_id": wishID})
	if err != nil {
		return fmt.Errorf("failed to delete wish: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrWishNotFound
	}
	return nil
}
