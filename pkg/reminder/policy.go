package reminder

import (
	"math"
	"time"
)

// Policy is the pure mapping from days-until-due to a tiered reminder
// cadence. Same inputs always produce the same rule set; the policy performs
// no I/O and registers nothing itself.
//
// Cadence per tier:
//
//	days 3..5   upcoming          once, 10:00
//	days 1..2   upcoming-near     once, 18:00
//	day 0       due-today         09:00 and 18:00
//	days -1..-3 overdue-recent    10:00 and 16:00
//	days -4..-7 overdue-frequent  every 8h starting now
//	days < -7   critical          every 4h starting now
//	days > 5    none
type Policy struct {
	loc *time.Location
}

// PolicyOption configures a Policy.
type PolicyOption func(*Policy)

// WithPolicyLocation sets the location in which daily fire times are
// resolved. Defaults to time.Local, matching device-local alarms.
func WithPolicyLocation(loc *time.Location) PolicyOption {
	return func(p *Policy) {
		if loc != nil {
			p.loc = loc
		}
	}
}

// NewPolicy creates a reminder policy.
func NewPolicy(opts ...PolicyOption) *Policy {
	p := &Policy{loc: time.Local}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// DaysUntilDue returns floor((dueAt - now) / 24h). Negative values mean the
// loan is overdue.
func DaysUntilDue(dueAt, now time.Time) int {
	return int(math.Floor(dueAt.Sub(now).Hours() / 24))
}

// Classify maps days-until-due to its urgency tier. This is the single
// bucket table consumed by both the scheduling cadence and the dispatch
// title, so the two can never drift apart.
func Classify(daysUntilDue int) Tier {
	switch {
	case daysUntilDue > 5:
		return TierNone
	case daysUntilDue >= 3:
		return TierUpcoming
	case daysUntilDue >= 1:
		return TierUpcomingNear
	case daysUntilDue == 0:
		return TierDueToday
	case daysUntilDue >= -3:
		return TierOverdueRecent
	case daysUntilDue >= -7:
		return TierOverdueFrequent
	default:
		return TierCritical
	}
}

// Title derives the notification title from days-until-due via the shared
// bucket table.
func Title(daysUntilDue int) string {
	switch Classify(daysUntilDue) {
	case TierUpcomingNear:
		return "Book due soon"
	case TierDueToday:
		return "Book due today"
	case TierOverdueRecent:
		return "Book overdue"
	case TierOverdueFrequent:
		return "Book urgently overdue"
	case TierCritical:
		return "Critical: book overdue"
	default:
		return "Book return reminder"
	}
}

// NeedsImmediate reports whether the tier warrants an extra immediate
// one-shot, covering the just-changed-due-date case.
func NeedsImmediate(daysUntilDue int) bool {
	return daysUntilDue <= 2
}

// Rules returns the ordered tiered rule set for a loan that is daysUntilDue
// days from its due date at instant now. Rules whose computed fire time is
// at or before now are dropped, never fired late. Slot indices are stable
// within a bucket, so the derived alarm identities survive re-evaluation.
func (p *Policy) Rules(daysUntilDue int, now time.Time) []Rule {
	now = now.In(p.loc)

	var candidates []time.Time
	tier := Classify(daysUntilDue)
	switch tier {
	case TierUpcoming:
		// Once at 10:00 three days before due.
		candidates = []time.Time{p.dailyAt(now, daysUntilDue-3, 10, 0)}
	case TierUpcomingNear:
		// Once at 18:00 the day before due.
		candidates = []time.Time{p.dailyAt(now, daysUntilDue-1, 18, 0)}
	case TierDueToday:
		candidates = []time.Time{
			p.dailyAt(now, 0, 9, 0),
			p.dailyAt(now, 0, 18, 0),
		}
	case TierOverdueRecent:
		candidates = []time.Time{
			p.dailyAt(now, 0, 10, 0),
			p.dailyAt(now, 0, 16, 0),
		}
	case TierOverdueFrequent:
		candidates = intervalTimes(now, 8*time.Hour, 3)
	case TierCritical:
		candidates = intervalTimes(now, 4*time.Hour, 6)
	default:
		return nil
	}

	rules := make([]Rule, 0, len(candidates))
	for slot, fireAt := range candidates {
		if !fireAt.After(now) {
			continue
		}
		rules = append(rules, Rule{Slot: slot, Tier: tier, FireAt: fireAt})
	}
	return rules
}

// dailyAt resolves hour:minute on the day dayOffset days from now.
func (p *Policy) dailyAt(now time.Time, dayOffset, hour, minute int) time.Time {
	d := now.AddDate(0, 0, dayOffset)
	return time.Date(d.Year(), d.Month(), d.Day(), hour, minute, 0, 0, p.loc)
}

// intervalTimes spreads n fire times every step apart. The first entry is
// nudged one second past now so the opening ping fires right away without
// violating the no-past-instants rule.
func intervalTimes(now time.Time, step time.Duration, n int) []time.Time {
	first := now.Add(time.Second)
	out := make([]time.Time, n)
	for i := range out {
		out[i] = first.Add(time.Duration(i) * step)
	}
	return out
}
