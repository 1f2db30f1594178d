package reminder

import (
	"context"
	"hash/fnv"
	"time"
)

// Tier is an urgency bucket driving reminder frequency and message tone.
type Tier string

const (
	TierNone            Tier = ""
	TierUpcoming        Tier = "upcoming"
	TierUpcomingNear    Tier = "upcoming-near"
	TierDueToday        Tier = "due-today"
	TierOverdueRecent   Tier = "overdue-recent"
	TierOverdueFrequent Tier = "overdue-frequent"
	TierCritical        Tier = "critical"
)

// Kind distinguishes the two reminder families a loan can produce.
type Kind string

const (
	KindDueReminder Kind = "due-reminder"
	KindAssignment  Kind = "assignment"
)

// Slot indices within a loan's identity space. Tiered rules occupy
// slots 0..maxTieredSlots-1 in policy order; the immediate and assignment
// one-shots have reserved slots so Cancel can enumerate everything.
const (
	maxTieredSlots = 6
	slotImmediate  = maxTieredSlots
	slotAssignment = maxTieredSlots + 1
	slotCount      = maxTieredSlots + 2
)

// Loan is a snapshot of one book copy assigned to one user. It is owned by
// the loan data source; the core only reads it at schedule-build time.
type Loan struct {
	BookID     string
	BookTitle  string
	BookAuthor string
	UserID     string
	UserName   string
	DueAt      time.Time
}

// Rule is one point-in-time reminder produced by the Policy. Slot is stable
// for a given days-until-due bucket, so re-evaluating the policy for the
// same loan yields the same identities.
type Rule struct {
	Slot   int
	Tier   Tier
	FireAt time.Time
}

// Payload is carried through the alarm registrar and handed back to the
// Dispatcher when the alarm fires.
type Payload struct {
	Kind         Kind      `json:"kind"`
	BookID       string    `json:"book_id"`
	BookTitle    string    `json:"book_title"`
	BookAuthor   string    `json:"book_author"`
	UserID       string    `json:"user_id"`
	UserName     string    `json:"user_name"`
	Tier         Tier      `json:"tier"`
	DaysUntilDue int       `json:"days_until_due"`
	DueAt        time.Time `json:"due_at"`
}

// Registrar is the one-shot alarm backend the Scheduler registers with.
// The three register methods form a precision ladder: exact wake alarms,
// inexact alarms, and deferrable best-effort alarms. Registering an
// identity that already exists replaces the prior registration; cancelling
// an unknown identity is a no-op.
type Registrar interface {
	CanScheduleExact() bool
	RegisterExact(identity int64, fireAt time.Time, payload Payload) error
	RegisterInexact(identity int64, fireAt time.Time, payload Payload) error
	RegisterDeferrable(identity int64, fireAt time.Time, payload Payload) error
	Cancel(identity int64) error
}

// AssigneeRecord is one assignment slot of a book as reported by the loan
// data source. A nil DueAt means no due date was recorded for the slot.
type AssigneeRecord struct {
	UserID   string
	UserName string
	DueAt    *time.Time
}

// BookRecord is one book with a non-empty assignment list, as reported by
// the loan data source during rehydration.
type BookRecord struct {
	BookID    string
	Title     string
	Author    string
	Assignees []AssigneeRecord
}

// LoanSource provides the active loan snapshot used at boot-time
// rehydration.
type LoanSource interface {
	ActiveLoans(ctx context.Context) ([]BookRecord, error)
}

// Notice is the user-visible rendering of a fired reminder.
type Notice struct {
	UserID  string
	Title   string
	Body    string
	Channel string
}

// Presenter turns a fired alarm into a user-visible message. Repeated calls
// with the same notificationID replace the prior message instead of piling
// up distinct entries.
type Presenter interface {
	Show(ctx context.Context, notificationID int64, notice Notice) error
}

// slotIdentity derives the deterministic alarm identity for one slot of a
// loan. The identity depends only on (bookID, userID, slot), never on
// scheduling time.
func slotIdentity(bookID, userID string, slot int) int64 {
	h := fnv.New64a()
	h.Write([]byte(bookID))
	h.Write([]byte{0})
	h.Write([]byte(userID))
	h.Write([]byte{0, byte(slot)})
	return int64(h.Sum64())
}

// NotificationID derives the stable presenter identity for a loan. All
// fires for the same (book, user) pair share it, so newer notifications
// replace older ones.
func NotificationID(bookID, userID string) int64 {
	h := fnv.New64a()
	h.Write([]byte(bookID))
	h.Write([]byte{0})
	h.Write([]byte(userID))
	return int64(h.Sum64())
}
