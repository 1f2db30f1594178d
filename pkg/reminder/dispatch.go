package reminder

import (
	"context"
	"fmt"
	"log/slog"
)

// ViewerFunc reports the identity the notification surface renders for.
// Returning the loan's own user produces first-person phrasing; any other
// identity produces third-person phrasing for an observer. This is a
// presentation contract only, not an authorization check.
type ViewerFunc func(ctx context.Context) string

// Dispatcher handles fired alarms: it renders the role-aware message and
// emits exactly one presenter call per fire. Errors never propagate to the
// alarm callback.
type Dispatcher struct {
	presenter Presenter
	viewer    ViewerFunc
	logger    *slog.Logger
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithViewer sets the viewer identity resolver. By default the viewer is
// the loan's own user, so messages are phrased in first person.
func WithViewer(viewer ViewerFunc) DispatcherOption {
	return func(d *Dispatcher) {
		if viewer != nil {
			d.viewer = viewer
		}
	}
}

// WithDispatcherLogger sets the logger for the Dispatcher.
func WithDispatcherLogger(logger *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// NewDispatcher creates a notification dispatcher on top of the given
// presenter.
func NewDispatcher(presenter Presenter, opts ...DispatcherOption) (*Dispatcher, error) {
	if presenter == nil {
		return nil, ErrPresenterNil
	}
	d := &Dispatcher{
		presenter: presenter,
		viewer:    func(context.Context) string { return "" },
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// HandleFire is invoked by the alarm backend when a registration fires. It
// emits a single notification tagged with the loan's stable notification
// ID, so repeated fires for the same loan replace rather than pile up.
// Any failure, panic included, terminates in a log statement.
func (d *Dispatcher) HandleFire(ctx context.Context, payload Payload) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.ErrorContext(ctx, "panic while dispatching reminder",
				slog.String("book_id", payload.BookID),
				slog.String("user_id", payload.UserID),
				slog.Any("panic", r))
		}
	}()

	viewer := d.viewer(ctx)
	firstPerson := viewer == "" || viewer == payload.UserID

	notice := Notice{
		UserID:  payload.UserID,
		Title:   d.title(payload),
		Body:    d.body(payload, firstPerson),
		Channel: d.channel(payload),
	}

	id := NotificationID(payload.BookID, payload.UserID)
	if err := d.presenter.Show(ctx, id, notice); err != nil {
		d.logger.ErrorContext(ctx, "failed to present reminder",
			slog.String("book_id", payload.BookID),
			slog.String("user_id", payload.UserID),
			slog.Int64("notification_id", id),
			slog.Any("error", err))
		return
	}

	d.logger.DebugContext(ctx, "reminder presented",
		slog.String("book_id", payload.BookID),
		slog.String("user_id", payload.UserID),
		slog.String("tier", string(payload.Tier)),
		slog.Int64("notification_id", id))
}

func (d *Dispatcher) title(payload Payload) string {
	if payload.Kind == KindAssignment {
		return "Book assigned"
	}
	return Title(payload.DaysUntilDue)
}

func (d *Dispatcher) channel(payload Payload) string {
	if payload.Kind == KindAssignment {
		return "assignments"
	}
	if payload.DaysUntilDue < 0 {
		return "overdue"
	}
	return "reminders"
}

func (d *Dispatcher) body(payload Payload, firstPerson bool) string {
	book := fmt.Sprintf("%q", payload.BookTitle)
	if payload.BookAuthor != "" {
		book = fmt.Sprintf("%q by %s", payload.BookTitle, payload.BookAuthor)
	}

	subject := "You"
	verb := "have"
	if !firstPerson {
		subject = payload.UserName
		if subject == "" {
			subject = payload.UserID
		}
		verb = "has"
	}

	if payload.Kind == KindAssignment {
		due := payload.DueAt.Format("Jan 2, 2006")
		return fmt.Sprintf("%s %s been assigned %s, due on %s.", subject, verb, book, due)
	}

	days := payload.DaysUntilDue
	switch {
	case days > 0:
		return fmt.Sprintf("%s must return %s in %s.", subject, book, plural(days, "day"))
	case days == 0:
		return fmt.Sprintf("%s must return %s today.", subject, book)
	default:
		return fmt.Sprintf("%s must return %s; it is %s overdue.", subject, book, plural(-days, "day"))
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
