package reminder

import (
	"context"
	"log/slog"
	"time"
)

// immediateDelay is the lead time for the immediate and assignment
// one-shots.
const immediateDelay = time.Second

// Scheduler realizes Policy output as concrete alarm registrations and owns
// their lifecycle. All operations are keyed by (bookID, userID) through
// deterministic slot identities, making Schedule idempotent and Cancel safe
// to call for loans that were never scheduled.
type Scheduler struct {
	registrar Registrar
	policy    *Policy
	now       func() time.Time
	logger    *slog.Logger
}

// NewScheduler creates a reminder scheduler on top of the given alarm
// registrar.
func NewScheduler(registrar Registrar, opts ...SchedulerOption) (*Scheduler, error) {
	if registrar == nil {
		return nil, ErrRegistrarNil
	}

	options := &schedulerOptions{
		policy: NewPolicy(),
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}

	return &Scheduler{
		registrar: registrar,
		policy:    options.policy,
		now:       options.now,
		logger:    options.logger,
	}, nil
}

// Schedule computes the rule set for the loan and registers one alarm per
// rule, replacing whatever was registered for the loan before. Registration
// failures are logged and swallowed; scheduling never crashes the caller.
func (s *Scheduler) Schedule(ctx context.Context, loan Loan) error {
	if loan.BookID == "" || loan.UserID == "" {
		return ErrInvalidLoan
	}

	// Clear every due-reminder slot first so a shorter rule set does not
	// leave stale registrations from a prior, longer one.
	for slot := 0; slot <= slotImmediate; slot++ {
		s.cancelSlot(loan.BookID, loan.UserID, slot)
	}

	now := s.now()
	days := DaysUntilDue(loan.DueAt, now)
	rules := s.policy.Rules(days, now)

	for _, rule := range rules {
		s.register(ctx, loan, rule.Slot, rule.FireAt, Payload{
			Kind:         KindDueReminder,
			BookID:       loan.BookID,
			BookTitle:    loan.BookTitle,
			BookAuthor:   loan.BookAuthor,
			UserID:       loan.UserID,
			UserName:     loan.UserName,
			Tier:         rule.Tier,
			DaysUntilDue: days,
			DueAt:        loan.DueAt,
		})
	}

	if NeedsImmediate(days) {
		s.registerImmediate(ctx, loan, days)
	}

	s.logger.DebugContext(ctx, "loan reminders scheduled",
		slog.String("book_id", loan.BookID),
		slog.String("user_id", loan.UserID),
		slog.Int("days_until_due", days),
		slog.Int("rules", len(rules)))

	return nil
}

// ScheduleImmediate registers the single near-instant reminder used when a
// due date is edited. It supersedes no other registrations.
func (s *Scheduler) ScheduleImmediate(ctx context.Context, loan Loan) error {
	if loan.BookID == "" || loan.UserID == "" {
		return ErrInvalidLoan
	}
	s.registerImmediate(ctx, loan, DaysUntilDue(loan.DueAt, s.now()))
	return nil
}

// ScheduleAssignmentNotice registers a near-instant notice for a freshly
// assigned book. It lives in its own slot, distinct from due-date
// reminders.
func (s *Scheduler) ScheduleAssignmentNotice(ctx context.Context, loan Loan) error {
	if loan.BookID == "" || loan.UserID == "" {
		return ErrInvalidLoan
	}
	days := DaysUntilDue(loan.DueAt, s.now())
	s.register(ctx, loan, slotAssignment, s.now().Add(immediateDelay), Payload{
		Kind:         KindAssignment,
		BookID:       loan.BookID,
		BookTitle:    loan.BookTitle,
		BookAuthor:   loan.BookAuthor,
		UserID:       loan.UserID,
		UserName:     loan.UserName,
		Tier:         Classify(days),
		DaysUntilDue: days,
		DueAt:        loan.DueAt,
	})
	return nil
}

// Cancel reconstructs every slot identity the loan could ever have used and
// cancels each registration. Cancelling a loan that was never scheduled is
// a no-op.
func (s *Scheduler) Cancel(ctx context.Context, bookID, userID string) error {
	if bookID == "" || userID == "" {
		return ErrInvalidLoan
	}
	for slot := 0; slot < slotCount; slot++ {
		s.cancelSlot(bookID, userID, slot)
	}
	s.logger.DebugContext(ctx, "loan reminders cancelled",
		slog.String("book_id", bookID),
		slog.String("user_id", userID))
	return nil
}

func (s *Scheduler) registerImmediate(ctx context.Context, loan Loan, days int) {
	s.register(ctx, loan, slotImmediate, s.now().Add(immediateDelay), Payload{
		Kind:         KindDueReminder,
		BookID:       loan.BookID,
		BookTitle:    loan.BookTitle,
		BookAuthor:   loan.BookAuthor,
		UserID:       loan.UserID,
		UserName:     loan.UserName,
		Tier:         Classify(days),
		DaysUntilDue: days,
		DueAt:        loan.DueAt,
	})
}

// register walks the precision ladder: exact wake alarms where the runtime
// grants them, inexact alarms otherwise, deferrable alarms as the last
// resort. A failure of all three is logged and swallowed.
func (s *Scheduler) register(ctx context.Context, loan Loan, slot int, fireAt time.Time, payload Payload) {
	identity := slotIdentity(loan.BookID, loan.UserID, slot)

	var exactErr error
	if s.registrar.CanScheduleExact() {
		if exactErr = s.registrar.RegisterExact(identity, fireAt, payload); exactErr == nil {
			return
		}
	}

	inexactErr := s.registrar.RegisterInexact(identity, fireAt, payload)
	if inexactErr == nil {
		return
	}

	if err := s.registrar.RegisterDeferrable(identity, fireAt, payload); err != nil {
		s.logger.ErrorContext(ctx, "alarm registration failed on every tier",
			slog.String("book_id", loan.BookID),
			slog.String("user_id", loan.UserID),
			slog.Int("slot", slot),
			slog.Time("fire_at", fireAt),
			slog.Any("exact_error", exactErr),
			slog.Any("inexact_error", inexactErr),
			slog.Any("error", err))
	}
}

func (s *Scheduler) cancelSlot(bookID, userID string, slot int) {
	if err := s.registrar.Cancel(slotIdentity(bookID, userID, slot)); err != nil {
		s.logger.Warn("alarm cancellation failed",
			slog.String("book_id", bookID),
			slog.String("user_id", userID),
			slog.Int("slot", slot),
			slog.Any("error", err))
	}
}
