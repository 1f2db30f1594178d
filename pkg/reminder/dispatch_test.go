package reminder_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhonnyxt/loantracker/pkg/reminder"
)

type mockPresenter struct {
	mu      sync.Mutex
	showErr error
	panics  bool
	shown   []shownNotice
}

type shownNotice struct {
	id     int64
	notice reminder.Notice
}

func (m *mockPresenter) Show(ctx context.Context, id int64, notice reminder.Notice) error {
	if m.panics {
		panic("presenter exploded")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.showErr != nil {
		return m.showErr
	}
	m.shown = append(m.shown, shownNotice{id: id, notice: notice})
	return nil
}

func overduePayload() reminder.Payload {
	return reminder.Payload{
		Kind:         reminder.KindDueReminder,
		BookID:       "book-1",
		BookTitle:    "The Go Programming Language",
		BookAuthor:   "Donovan & Kernighan",
		UserID:       "user-1",
		UserName:     "Alice",
		Tier:         reminder.TierOverdueRecent,
		DaysUntilDue: -2,
		DueAt:        noon.Add(-2 * 24 * time.Hour),
	}
}

func TestNewDispatcher(t *testing.T) {
	t.Parallel()

	d, err := reminder.NewDispatcher(nil)
	assert.ErrorIs(t, err, reminder.ErrPresenterNil)
	assert.Nil(t, d)
}

func TestDispatcher_HandleFire(t *testing.T) {
	t.Parallel()

	t.Run("first person for the loan's own user", func(t *testing.T) {
		t.Parallel()

		presenter := &mockPresenter{}
		d, err := reminder.NewDispatcher(presenter)
		require.NoError(t, err)

		d.HandleFire(context.Background(), overduePayload())

		require.Len(t, presenter.shown, 1)
		got := presenter.shown[0]
		assert.Equal(t, "user-1", got.notice.UserID)
		assert.Equal(t, "Book overdue", got.notice.Title)
		assert.Equal(t, `You must return "The Go Programming Language" by Donovan & Kernighan; it is 2 days overdue.`, got.notice.Body)
		assert.Equal(t, "overdue", got.notice.Channel)
	})

	t.Run("third person for an observer", func(t *testing.T) {
		t.Parallel()

		presenter := &mockPresenter{}
		d, err := reminder.NewDispatcher(presenter,
			reminder.WithViewer(func(context.Context) string { return "admin-1" }))
		require.NoError(t, err)

		d.HandleFire(context.Background(), overduePayload())

		require.Len(t, presenter.shown, 1)
		assert.Equal(t, `Alice must return "The Go Programming Language" by Donovan & Kernighan; it is 2 days overdue.`, presenter.shown[0].notice.Body)
	})

	t.Run("assignment notice", func(t *testing.T) {
		t.Parallel()

		presenter := &mockPresenter{}
		d, err := reminder.NewDispatcher(presenter)
		require.NoError(t, err)

		p := overduePayload()
		p.Kind = reminder.KindAssignment
		p.DaysUntilDue = 15
		p.DueAt = time.Date(2026, time.March, 25, 12, 0, 0, 0, time.UTC)
		d.HandleFire(context.Background(), p)

		require.Len(t, presenter.shown, 1)
		got := presenter.shown[0]
		assert.Equal(t, "Book assigned", got.notice.Title)
		assert.Equal(t, "assignments", got.notice.Channel)
		assert.Contains(t, got.notice.Body, "due on Mar 25, 2026")
	})

	t.Run("repeated fires reuse the same notification identity", func(t *testing.T) {
		t.Parallel()

		presenter := &mockPresenter{}
		d, err := reminder.NewDispatcher(presenter)
		require.NoError(t, err)

		d.HandleFire(context.Background(), overduePayload())
		p := overduePayload()
		p.DaysUntilDue = -3
		d.HandleFire(context.Background(), p)

		require.Len(t, presenter.shown, 2)
		assert.Equal(t, presenter.shown[0].id, presenter.shown[1].id)
		assert.Equal(t, reminder.NotificationID("book-1", "user-1"), presenter.shown[0].id)
	})

	t.Run("presenter failure is swallowed", func(t *testing.T) {
		t.Parallel()

		presenter := &mockPresenter{showErr: assert.AnError}
		d, err := reminder.NewDispatcher(presenter)
		require.NoError(t, err)

		assert.NotPanics(t, func() {
			d.HandleFire(context.Background(), overduePayload())
		})
	})

	t.Run("presenter panic is recovered", func(t *testing.T) {
		t.Parallel()

		presenter := &mockPresenter{panics: true}
		d, err := reminder.NewDispatcher(presenter)
		require.NoError(t, err)

		assert.NotPanics(t, func() {
			d.HandleFire(context.Background(), overduePayload())
		})
	})
}
