package reminder_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhonnyxt/loantracker/pkg/reminder"
)

// noon is an arbitrary fixed evaluation instant used across policy tests.
var noon = time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

func testPolicy() *reminder.Policy {
	return reminder.NewPolicy(reminder.WithPolicyLocation(time.UTC))
}

func TestDaysUntilDue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		dueAt time.Time
		want  int
	}{
		{"due in four full days", noon.Add(96 * time.Hour), 4},
		{"due in twelve hours", noon.Add(12 * time.Hour), 0},
		{"due right now", noon, 0},
		{"overdue by thirty-six hours", noon.Add(-36 * time.Hour), -2},
		{"overdue by ten days", noon.Add(-10 * 24 * time.Hour), -10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, reminder.DaysUntilDue(tt.dueAt, noon))
		})
	}
}

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		days int
		want reminder.Tier
	}{
		{10, reminder.TierNone},
		{6, reminder.TierNone},
		{5, reminder.TierUpcoming},
		{4, reminder.TierUpcoming},
		{3, reminder.TierUpcoming},
		{2, reminder.TierUpcomingNear},
		{1, reminder.TierUpcomingNear},
		{0, reminder.TierDueToday},
		{-1, reminder.TierOverdueRecent},
		{-3, reminder.TierOverdueRecent},
		{-4, reminder.TierOverdueFrequent},
		{-7, reminder.TierOverdueFrequent},
		{-8, reminder.TierCritical},
		{-30, reminder.TierCritical},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, reminder.Classify(tt.days), "days=%d", tt.days)
	}
}

func TestTitle(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Book return reminder", reminder.Title(10))
	assert.Equal(t, "Book return reminder", reminder.Title(4))
	assert.Equal(t, "Book due soon", reminder.Title(2))
	assert.Equal(t, "Book due today", reminder.Title(0))
	assert.Equal(t, "Book overdue", reminder.Title(-2))
	assert.Equal(t, "Book urgently overdue", reminder.Title(-6))
	assert.Equal(t, "Critical: book overdue", reminder.Title(-10))
}

func TestNeedsImmediate(t *testing.T) {
	t.Parallel()

	assert.False(t, reminder.NeedsImmediate(3))
	assert.True(t, reminder.NeedsImmediate(2))
	assert.True(t, reminder.NeedsImmediate(0))
	assert.True(t, reminder.NeedsImmediate(-10))
}

func TestPolicy_Rules(t *testing.T) {
	t.Parallel()

	t.Run("more than five days out yields nothing", func(t *testing.T) {
		t.Parallel()
		assert.Empty(t, testPolicy().Rules(6, noon))
		assert.Empty(t, testPolicy().Rules(40, noon))
	})

	t.Run("upcoming fires at 10:00 three days before due", func(t *testing.T) {
		t.Parallel()

		rules := testPolicy().Rules(4, noon)
		require.Len(t, rules, 1)
		assert.Equal(t, reminder.TierUpcoming, rules[0].Tier)
		assert.Equal(t, time.Date(2026, time.March, 11, 10, 0, 0, 0, time.UTC), rules[0].FireAt)
	})

	t.Run("fire times at or before now are dropped", func(t *testing.T) {
		t.Parallel()

		// Due in exactly three days evaluated at noon: the 10:00 slot for
		// today has already passed, so nothing is scheduled.
		assert.Empty(t, testPolicy().Rules(3, noon))
	})

	t.Run("upcoming-near fires at 18:00 the day before due", func(t *testing.T) {
		t.Parallel()

		rules := testPolicy().Rules(2, noon)
		require.Len(t, rules, 1)
		assert.Equal(t, reminder.TierUpcomingNear, rules[0].Tier)
		assert.Equal(t, time.Date(2026, time.March, 11, 18, 0, 0, 0, time.UTC), rules[0].FireAt)
	})

	t.Run("due today keeps only the remaining daily slot", func(t *testing.T) {
		t.Parallel()

		rules := testPolicy().Rules(0, noon)
		require.Len(t, rules, 1)
		assert.Equal(t, reminder.TierDueToday, rules[0].Tier)
		assert.Equal(t, 1, rules[0].Slot)
		assert.Equal(t, time.Date(2026, time.March, 10, 18, 0, 0, 0, time.UTC), rules[0].FireAt)
	})

	t.Run("overdue-recent fires twice a day", func(t *testing.T) {
		t.Parallel()

		rules := testPolicy().Rules(-2, noon)
		require.Len(t, rules, 1)
		assert.Equal(t, reminder.TierOverdueRecent, rules[0].Tier)
		assert.Equal(t, time.Date(2026, time.March, 10, 16, 0, 0, 0, time.UTC), rules[0].FireAt)

		morning := time.Date(2026, time.March, 10, 8, 0, 0, 0, time.UTC)
		rules = testPolicy().Rules(-2, morning)
		require.Len(t, rules, 2)
		assert.Equal(t, time.Date(2026, time.March, 10, 10, 0, 0, 0, time.UTC), rules[0].FireAt)
		assert.Equal(t, time.Date(2026, time.March, 10, 16, 0, 0, 0, time.UTC), rules[1].FireAt)
	})

	t.Run("overdue-frequent fires every eight hours starting now", func(t *testing.T) {
		t.Parallel()

		rules := testPolicy().Rules(-5, noon)
		require.Len(t, rules, 3)
		first := noon.Add(time.Second)
		for i, rule := range rules {
			assert.Equal(t, reminder.TierOverdueFrequent, rule.Tier)
			assert.Equal(t, first.Add(time.Duration(i)*8*time.Hour), rule.FireAt)
		}
	})

	t.Run("critical fires every four hours starting now", func(t *testing.T) {
		t.Parallel()

		rules := testPolicy().Rules(-10, noon)
		require.Len(t, rules, 6)
		first := noon.Add(time.Second)
		for i, rule := range rules {
			assert.Equal(t, reminder.TierCritical, rule.Tier)
			assert.Equal(t, first.Add(time.Duration(i)*4*time.Hour), rule.FireAt)
		}
	})

	t.Run("pure function, same input same output", func(t *testing.T) {
		t.Parallel()

		p := testPolicy()
		assert.Equal(t, p.Rules(-10, noon), p.Rules(-10, noon))
		assert.Equal(t, p.Rules(0, noon), p.Rules(0, noon))
	})
}
