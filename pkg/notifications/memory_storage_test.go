package notifications_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhonnyxt/loantracker/pkg/notifications"
)

func seedNotifications(t *testing.T, s notifications.Storage, userID string, n int) {
	t.Helper()
	base := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		require.NoError(t, s.Put(context.Background(), notifications.Notification{
			ID:        fmt.Sprintf("n%d", i),
			UserID:    userID,
			Channel:   notifications.ChannelReminders,
			Title:     fmt.Sprintf("title %d", i),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}
}

func TestMemoryStorage_Put(t *testing.T) {
	t.Parallel()

	s := notifications.NewMemoryStorage()
	ctx := context.Background()

	first := notifications.Notification{
		ID:        "n1",
		UserID:    "user-1",
		Title:     "old",
		CreatedAt: time.Now(),
	}
	require.NoError(t, s.Put(ctx, first))
	require.NoError(t, s.MarkRead(ctx, "user-1", "n1"))

	// Upsert with the same identity replaces the entry and resets the
	// read state.
	first.Title = "new"
	require.NoError(t, s.Put(ctx, first))

	got, err := s.Get(ctx, "user-1", "n1")
	require.NoError(t, err)
	assert.Equal(t, "new", got.Title)
	assert.False(t, got.Read)
}

func TestMemoryStorage_Get(t *testing.T) {
	t.Parallel()

	s := notifications.NewMemoryStorage()
	_, err := s.Get(context.Background(), "user-1", "missing")
	assert.ErrorIs(t, err, notifications.ErrNotFound)
}

func TestMemoryStorage_List(t *testing.T) {
	t.Parallel()

	t.Run("newest first", func(t *testing.T) {
		t.Parallel()

		s := notifications.NewMemoryStorage()
		seedNotifications(t, s, "user-1", 3)

		list, err := s.List(context.Background(), "user-1", notifications.ListOptions{})
		require.NoError(t, err)
		require.Len(t, list, 3)
		assert.Equal(t, "n2", list[0].ID)
		assert.Equal(t, "n0", list[2].ID)
	})

	t.Run("pagination", func(t *testing.T) {
		t.Parallel()

		s := notifications.NewMemoryStorage()
		seedNotifications(t, s, "user-1", 5)

		list, err := s.List(context.Background(), "user-1", notifications.ListOptions{Limit: 2, Offset: 1})
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "n3", list[0].ID)
		assert.Equal(t, "n2", list[1].ID)
	})

	t.Run("only unread", func(t *testing.T) {
		t.Parallel()

		s := notifications.NewMemoryStorage()
		seedNotifications(t, s, "user-1", 3)
		require.NoError(t, s.MarkRead(context.Background(), "user-1", "n1"))

		list, err := s.List(context.Background(), "user-1", notifications.ListOptions{OnlyUnread: true})
		require.NoError(t, err)
		require.Len(t, list, 2)
		for _, n := range list {
			assert.False(t, n.Read)
		}
	})

	t.Run("channel filter", func(t *testing.T) {
		t.Parallel()

		s := notifications.NewMemoryStorage()
		ctx := context.Background()
		require.NoError(t, s.Put(ctx, notifications.Notification{
			ID: "r1", UserID: "user-1", Channel: notifications.ChannelReminders, CreatedAt: time.Now(),
		}))
		require.NoError(t, s.Put(ctx, notifications.Notification{
			ID: "o1", UserID: "user-1", Channel: notifications.ChannelOverdue, CreatedAt: time.Now(),
		}))

		list, err := s.List(ctx, "user-1", notifications.ListOptions{Channel: notifications.ChannelOverdue})
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "o1", list[0].ID)
	})

	t.Run("isolated per user", func(t *testing.T) {
		t.Parallel()

		s := notifications.NewMemoryStorage()
		seedNotifications(t, s, "user-1", 2)

		list, err := s.List(context.Background(), "user-2", notifications.ListOptions{})
		require.NoError(t, err)
		assert.Empty(t, list)
	})
}

func TestMemoryStorage_MarkRead(t *testing.T) {
	t.Parallel()

	s := notifications.NewMemoryStorage()
	ctx := context.Background()
	seedNotifications(t, s, "user-1", 2)

	// Unknown IDs are skipped without error.
	require.NoError(t, s.MarkRead(ctx, "user-1", "n0", "missing"))

	got, err := s.Get(ctx, "user-1", "n0")
	require.NoError(t, err)
	assert.True(t, got.Read)
	require.NotNil(t, got.ReadAt)

	count, err := s.CountUnread(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestMemoryStorage_Delete(t *testing.T) {
	t.Parallel()

	s := notifications.NewMemoryStorage()
	ctx := context.Background()
	seedNotifications(t, s, "user-1", 2)

	require.NoError(t, s.Delete(ctx, "user-1", "n0", "missing"))

	_, err := s.Get(ctx, "user-1", "n0")
	assert.ErrorIs(t, err, notifications.ErrNotFound)
	_, err = s.Get(ctx, "user-1", "n1")
	assert.NoError(t, err)
}
