package library

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/jhonnyxt/loantracker/pkg/email"
	"github.com/jhonnyxt/loantracker/pkg/notifications"
	"github.com/jhonnyxt/loantracker/pkg/reminder"
)

// ReminderScheduler is the slice of the reminder core the service drives.
type ReminderScheduler interface {
	Schedule(ctx context.Context, loan reminder.Loan) error
	ScheduleImmediate(ctx context.Context, loan reminder.Loan) error
	ScheduleAssignmentNotice(ctx context.Context, loan reminder.Loan) error
	Cancel(ctx context.Context, bookID, userID string) error
}

// Notifier delivers in-app notifications. Satisfied by
// notifications.Manager.
type Notifier interface {
	Send(ctx context.Context, notif notifications.Notification) error
}

// Service implements the catalog, loan, and wishlist operations. Reminder
// scheduling is mandatory; notifications and email are best-effort
// collaborators that never fail a loan operation.
type Service struct {
	repo       Repository
	scheduler  ReminderScheduler
	notifier   Notifier
	sender     email.EmailSender
	loanPeriod time.Duration
	now        func() time.Time
	logger     *slog.Logger
}

// ServiceOption configures the Service.
type ServiceOption func(*Service)

// WithNotifier sets the in-app notification sink for wishlist events.
func WithNotifier(n Notifier) ServiceOption {
	return func(s *Service) {
		if n != nil {
			s.notifier = n
		}
	}
}

// WithEmailSender sets the outbound email collaborator.
func WithEmailSender(sender email.EmailSender) ServiceOption {
	return func(s *Service) {
		if sender != nil {
			s.sender = sender
		}
	}
}

// WithLoanPeriod overrides the default loan period applied when an
// assignment has no explicit due date.
func WithLoanPeriod(d time.Duration) ServiceOption {
	return func(s *Service) {
		if d > 0 {
			s.loanPeriod = d
		}
	}
}

// WithServiceClock overrides the time source, for tests.
func WithServiceClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithServiceLogger sets the logger.
func WithServiceLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewService creates the library service.
func NewService(repo Repository, scheduler ReminderScheduler, opts ...ServiceOption) (*Service, error) {
	if repo == nil {
		return nil, ErrRepositoryNil
	}
	if scheduler == nil {
		return nil, ErrSchedulerNil
	}

	s := &Service{
		repo:       repo,
		scheduler:  scheduler,
		loanPeriod: reminder.DefaultLoanPeriod,
		now:        time.Now,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// CreateBook adds a book to the catalog.
func (s *Service) CreateBook(ctx context.Context, book Book) (*Book, error) {
	if book.Title == "" || book.Quantity < 0 {
		return nil, ErrInvalidBook
	}
	if book.ID == "" {
		book.ID = uuid.NewString()
	}
	now := s.now()
	book.CreatedAt = now
	book.UpdatedAt = now
	book.Assignments = nil

	if err := s.repo.CreateBook(ctx, book); err != nil {
		return nil, err
	}
	return &book, nil
}

// GetBook returns one catalog entry.
func (s *Service) GetBook(ctx context.Context, bookID string) (*Book, error) {
	return s.repo.GetBook(ctx, bookID)
}

// ListBooks returns the whole catalog.
func (s *Service) ListBooks(ctx context.Context) ([]Book, error) {
	return s.repo.ListBooks(ctx)
}

// UpdateBook updates catalog fields of a book. Assignments are managed
// through Assign/Return, never through this call. A quantity increase frees
// copies, so wishlist waiters are checked.
func (s *Service) UpdateBook(ctx context.Context, book Book) (*Book, error) {
	current, err := s.repo.GetBook(ctx, book.ID)
	if err != nil {
		return nil, err
	}
	if book.Title == "" || book.Quantity < len(current.Assignments) {
		return nil, ErrInvalidBook
	}

	hadCopies := current.Available() > 0

	current.Title = book.Title
	current.Author = book.Author
	current.Categories = book.Categories
	current.Quantity = book.Quantity
	current.UpdatedAt = s.now()

	if err := s.repo.UpdateBook(ctx, *current); err != nil {
		return nil, err
	}

	if !hadCopies && current.Available() > 0 {
		s.notifyWaiters(ctx, *current)
	}
	return current, nil
}

// DeleteBook removes a book. Reminders of every open assignment are
// cancelled first so no orphaned alarms fire for a book that no longer
// exists.
func (s *Service) DeleteBook(ctx context.Context, bookID string) error {
	book, err := s.repo.GetBook(ctx, bookID)
	if err != nil {
		return err
	}
	for _, a := range book.Assignments {
		if err := s.scheduler.Cancel(ctx, bookID, a.UserID); err != nil {
			s.logger.WarnContext(ctx, "failed to cancel reminders for deleted book",
				slog.String("book_id", bookID),
				slog.String("user_id", a.UserID),
				slog.Any("error", err))
		}
	}
	return s.repo.DeleteBook(ctx, bookID)
}

// AssignParams describes the borrower for Assign. A nil DueAt applies the
// default loan period.
type AssignParams struct {
	UserID   string     `json:"user_id"`
	UserName string     `json:"user_name"`
	Email    string     `json:"email,omitempty"`
	DueAt    *time.Time `json:"due_at,omitempty"`
}

// Assign lends one copy of a book to a user. It records the assignment,
// schedules the assignment notice plus the tiered due-date reminders, and
// emails the borrower best-effort.
func (s *Service) Assign(ctx context.Context, bookID string, params AssignParams) (*Book, error) {
	if params.UserID == "" || params.UserName == "" {
		return nil, ErrInvalidAssignment
	}

	book, err := s.repo.GetBook(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if _, ok := book.AssignmentOf(params.UserID); ok {
		return nil, ErrAlreadyBorrowed
	}
	if book.Available() <= 0 {
		return nil, ErrNoCopiesAvailable
	}

	now := s.now()
	dueAt := now.Add(s.loanPeriod)
	if params.DueAt != nil {
		dueAt = *params.DueAt
	}

	book.Assignments = append(book.Assignments, Assignment{
		UserID:     params.UserID,
		UserName:   params.UserName,
		Email:      params.Email,
		DueAt:      &dueAt,
		AssignedAt: now,
	})
	book.UpdatedAt = now

	if err := s.repo.UpdateBook(ctx, *book); err != nil {
		return nil, err
	}

	loan := s.loanOf(*book, params.UserID, params.UserName, dueAt)
	if err := s.scheduler.ScheduleAssignmentNotice(ctx, loan); err != nil {
		return nil, fmt.Errorf("failed to schedule assignment notice: %w", err)
	}
	if err := s.scheduler.Schedule(ctx, loan); err != nil {
		return nil, fmt.Errorf("failed to schedule reminders: %w", err)
	}

	if s.sender != nil && params.Email != "" {
		msg := email.AssignmentEmail(params.Email, params.UserName, book.Title, dueAt)
		if err := s.sender.SendEmail(ctx, msg); err != nil {
			s.logger.WarnContext(ctx, "failed to send assignment email",
				slog.String("book_id", bookID),
				slog.String("user_id", params.UserID),
				slog.Any("error", err))
		}
	}
	return book, nil
}

// Return takes a borrowed copy back. Reminders are cancelled and, now that
// a copy is free, wishlist waiters are notified.
func (s *Service) Return(ctx context.Context, bookID, userID string) (*Book, error) {
	book, err := s.repo.GetBook(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if _, ok := book.AssignmentOf(userID); !ok {
		return nil, ErrNotBorrowed
	}

	kept := book.Assignments[:0]
	for _, a := range book.Assignments {
		if a.UserID != userID {
			kept = append(kept, a)
		}
	}
	book.Assignments = kept
	book.UpdatedAt = s.now()

	if err := s.repo.UpdateBook(ctx, *book); err != nil {
		return nil, err
	}

	if err := s.scheduler.Cancel(ctx, bookID, userID); err != nil {
		s.logger.WarnContext(ctx, "failed to cancel reminders on return",
			slog.String("book_id", bookID),
			slog.String("user_id", userID),
			slog.Any("error", err))
	}

	s.notifyWaiters(ctx, *book)
	return book, nil
}

// ExtendDueDate moves an assignment's due date and rebuilds its reminders.
// An immediate reminder confirms the new date to the borrower right away.
func (s *Service) ExtendDueDate(ctx context.Context, bookID, userID string, newDueAt time.Time) (*Book, error) {
	book, err := s.repo.GetBook(ctx, bookID)
	if err != nil {
		return nil, err
	}

	var assignee *Assignment
	for i := range book.Assignments {
		if book.Assignments[i].UserID == userID {
			assignee = &book.Assignments[i]
			break
		}
	}
	if assignee == nil {
		return nil, ErrNotBorrowed
	}

	assignee.DueAt = &newDueAt
	book.UpdatedAt = s.now()

	if err := s.repo.UpdateBook(ctx, *book); err != nil {
		return nil, err
	}

	loan := s.loanOf(*book, userID, assignee.UserName, newDueAt)
	if err := s.scheduler.ScheduleImmediate(ctx, loan); err != nil {
		return nil, fmt.Errorf("failed to schedule immediate reminder: %w", err)
	}
	if err := s.scheduler.Schedule(ctx, loan); err != nil {
		return nil, fmt.Errorf("failed to reschedule reminders: %w", err)
	}
	return book, nil
}

// ListLoans returns every open assignment across the catalog.
func (s *Service) ListLoans(ctx context.Context) ([]UserLoan, error) {
	books, err := s.repo.BooksWithAssignments(ctx)
	if err != nil {
		return nil, err
	}

	var loans []UserLoan
	for _, book := range books {
		for _, a := range book.Assignments {
			loans = append(loans, UserLoan{
				BookID:    book.ID,
				BookTitle: book.Title,
				Author:    book.Author,
				UserID:    a.UserID,
				UserName:  a.UserName,
				DueAt:     a.DueAt,
			})
		}
	}
	return loans, nil
}

// UserLoans returns the open assignments of one user.
func (s *Service) UserLoans(ctx context.Context, userID string) ([]UserLoan, error) {
	loans, err := s.ListLoans(ctx)
	if err != nil {
		return nil, err
	}

	mine := loans[:0]
	for _, l := range loans {
		if l.UserID == userID {
			mine = append(mine, l)
		}
	}
	return mine, nil
}

// SendOverdueDigest emails every borrower currently holding an overdue
// copy. Per-recipient send failures are logged and do not abort the sweep;
// the returned count covers successfully sent emails only.
func (s *Service) SendOverdueDigest(ctx context.Context) (int, error) {
	if s.sender == nil {
		return 0, nil
	}

	books, err := s.repo.BooksWithAssignments(ctx)
	if err != nil {
		return 0, err
	}

	now := s.now()
	sent := 0
	for _, book := range books {
		for _, a := range book.Assignments {
			if a.Email == "" || a.DueAt == nil || !a.DueAt.Before(now) {
				continue
			}
			daysOverdue := -reminder.DaysUntilDue(*a.DueAt, now)
			msg := email.OverdueEmail(a.Email, a.UserName, book.Title, *a.DueAt, daysOverdue)
			if err := s.sender.SendEmail(ctx, msg); err != nil {
				s.logger.WarnContext(ctx, "failed to send overdue email",
					slog.String("book_id", book.ID),
					slog.String("user_id", a.UserID),
					slog.Any("error", err))
				continue
			}
			sent++
		}
	}
	return sent, nil
}

// AddToWishlist records that a user wants a book.
func (s *Service) AddToWishlist(ctx context.Context, bookID, userID, userEmail string) (*WishItem, error) {
	if _, err := s.repo.GetBook(ctx, bookID); err != nil {
		return nil, err
	}

	wish := WishItem{
		ID:        uuid.NewString(),
		UserID:    userID,
		UserEmail: userEmail,
		BookID:    bookID,
		CreatedAt: s.now(),
	}
	if err := s.repo.AddWish(ctx, wish); err != nil {
		return nil, err
	}
	return &wish, nil
}

// Wishlist returns a user's wishes.
func (s *Service) Wishlist(ctx context.Context, userID string) ([]WishItem, error) {
	return s.repo.WishesForUser(ctx, userID)
}

// RemoveFromWishlist deletes a wish.
func (s *Service) RemoveFromWishlist(ctx context.Context, wishID string) error {
	return s.repo.RemoveWish(ctx, wishID)
}

// notifyWaiters tells wishlist waiters a copy of the book is available.
// Every step is best-effort; an unreachable notifier or mail provider must
// never fail the loan operation that freed the copy.
func (s *Service) notifyWaiters(ctx context.Context, book Book) {
	if book.Available() <= 0 {
		return
	}

	wishes, err := s.repo.WishesForBook(ctx, book.ID)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to load wishlist waiters",
			slog.String("book_id", book.ID),
			slog.Any("error", err))
		return
	}

	for _, wish := range wishes {
		if s.notifier != nil {
			err := s.notifier.Send(ctx, notifications.Notification{
				ID:      wish.ID,
				UserID:  wish.UserID,
				Channel: notifications.ChannelWishlist,
				Title:   "Book available",
				Message: fmt.Sprintf("%q is available to borrow again.", book.Title),
				Data:    map[string]string{"book_id": book.ID},
			})
			if err != nil {
				s.logger.WarnContext(ctx, "failed to notify wishlist waiter",
					slog.String("book_id", book.ID),
					slog.String("user_id", wish.UserID),
					slog.Any("error", err))
			}
		}

		if s.sender != nil && wish.UserEmail != "" {
			msg := email.SendEmailParams{
				SendTo:   wish.UserEmail,
				Subject:  "Book available: " + book.Title,
				BodyHTML: fmt.Sprintf("<p>The book <strong>%s</strong> is available to borrow again.</p>", book.Title),
				Tag:      "wishlist-available",
			}
			if err := s.sender.SendEmail(ctx, msg); err != nil {
				s.logger.WarnContext(ctx, "failed to email wishlist waiter",
					slog.String("book_id", book.ID),
					slog.String("user_id", wish.UserID),
					slog.Any("error", err))
			}
		}

		if err := s.repo.MarkWishFulfilled(ctx, wish.ID); err != nil {
			s.logger.WarnContext(ctx, "failed to mark wish fulfilled",
				slog.String("wish_id", wish.ID),
				slog.Any("error", err))
		}
	}
}

func (s *Service) loanOf(book Book, userID, userName string, dueAt time.Time) reminder.Loan {
	return reminder.Loan{
		BookID:     book.ID,
		BookTitle:  book.Title,
		BookAuthor: book.Author,
		UserID:     userID,
		UserName:   userName,
		DueAt:      dueAt,
	}
}
