package reminder

import (
	"context"
	"log/slog"
	"time"
)

// DefaultLoanPeriod is assumed for assignment slots that carry no recorded
// due date.
const DefaultLoanPeriod = 15 * 24 * time.Hour

// Rehydrator rebuilds alarm registrations after a restart. OS-level one-shot
// alarms do not survive a reboot; the rehydrator is the compensating
// mechanism that re-derives every active loan from the data source and
// re-invokes the Scheduler for each.
// LoanScheduler is the slice of the Scheduler the Rehydrator drives.
type LoanScheduler interface {
	Schedule(ctx context.Context, loan Loan) error
}

type Rehydrator struct {
	source    LoanSource
	scheduler LoanScheduler
	now       func() time.Time
	logger    *slog.Logger
}

// RehydratorOption configures a Rehydrator.
type RehydratorOption func(*Rehydrator)

// WithRehydratorClock sets the time source, mainly for tests.
func WithRehydratorClock(now func() time.Time) RehydratorOption {
	return func(r *Rehydrator) {
		if now != nil {
			r.now = now
		}
	}
}

// WithRehydratorLogger sets the logger for the Rehydrator.
func WithRehydratorLogger(logger *slog.Logger) RehydratorOption {
	return func(r *Rehydrator) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRehydrator creates a boot rehydrator.
func NewRehydrator(source LoanSource, scheduler LoanScheduler, opts ...RehydratorOption) (*Rehydrator, error) {
	if source == nil {
		return nil, ErrLoanSourceNil
	}
	if scheduler == nil {
		return nil, ErrSchedulerNil
	}
	r := &Rehydrator{
		source:    source,
		scheduler: scheduler,
		now:       time.Now,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// OnRestart is the entry point the host invokes on the boot or app-update
// signal. The rehydration runs in the background and does not block the
// caller; completion is reported through log counters only.
func (r *Rehydrator) OnRestart(ctx context.Context) {
	go r.Rehydrate(context.WithoutCancel(ctx))
}

// Rehydrate queries every book with a non-empty assignment list and
// re-schedules reminders for each (book, assignee) pair. A malformed record
// skips that one loan and continues; nothing here aborts the sweep.
func (r *Rehydrator) Rehydrate(ctx context.Context) {
	records, err := r.source.ActiveLoans(ctx)
	if err != nil {
		r.logger.ErrorContext(ctx, "failed to load active loans for rehydration",
			slog.Any("error", err))
		return
	}

	var scheduled, skipped int
	for _, record := range records {
		for slot, assignee := range record.Assignees {
			if record.BookID == "" || assignee.UserID == "" {
				skipped++
				r.logger.WarnContext(ctx, "skipping malformed loan record",
					slog.String("book_id", record.BookID),
					slog.Int("assignment_slot", slot))
				continue
			}

			dueAt := r.dueAt(ctx, record, assignee)
			loan := Loan{
				BookID:     record.BookID,
				BookTitle:  record.Title,
				BookAuthor: record.Author,
				UserID:     assignee.UserID,
				UserName:   assignee.UserName,
				DueAt:      dueAt,
			}
			if err := r.scheduler.Schedule(ctx, loan); err != nil {
				skipped++
				r.logger.WarnContext(ctx, "failed to re-schedule loan",
					slog.String("book_id", record.BookID),
					slog.String("user_id", assignee.UserID),
					slog.Any("error", err))
				continue
			}
			scheduled++
		}
	}

	r.logger.InfoContext(ctx, "loan reminders rehydrated",
		slog.Int("books", len(records)),
		slog.Int("loans_scheduled", scheduled),
		slog.Int("loans_skipped", skipped))
}

func (r *Rehydrator) dueAt(ctx context.Context, record BookRecord, assignee AssigneeRecord) time.Time {
	if assignee.DueAt != nil {
		return *assignee.DueAt
	}
	dueAt := r.now().Add(DefaultLoanPeriod)
	r.logger.InfoContext(ctx, "assignment slot has no due date, assuming default loan period",
		slog.String("book_id", record.BookID),
		slog.String("user_id", assignee.UserID),
		slog.Time("assumed_due_at", dueAt))
	return dueAt
}
