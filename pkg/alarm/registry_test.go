package alarm_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhonnyxt/loantracker/pkg/alarm"
)

type fireRecorder struct {
	mu       sync.Mutex
	payloads []string
}

func (f *fireRecorder) fire(ctx context.Context, payload string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.payloads = append(f.payloads, payload)
}

func (f *fireRecorder) fired() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.payloads...)
}

func TestNewRegistry(t *testing.T) {
	t.Parallel()

	reg, err := alarm.NewRegistry[string](nil)
	assert.ErrorIs(t, err, alarm.ErrFireFuncNil)
	assert.Nil(t, reg)
}

func TestRegistry_RegisterExact(t *testing.T) {
	t.Parallel()

	t.Run("fires the payload once", func(t *testing.T) {
		t.Parallel()

		rec := &fireRecorder{}
		reg, err := alarm.NewRegistry(rec.fire)
		require.NoError(t, err)
		defer reg.Close()

		require.NoError(t, reg.RegisterExact(1, time.Now().Add(20*time.Millisecond), "ping"))
		assert.Equal(t, 1, reg.Len())

		assert.Eventually(t, func() bool {
			return len(rec.fired()) == 1
		}, time.Second, 5*time.Millisecond)
		assert.Equal(t, []string{"ping"}, rec.fired())
		assert.Zero(t, reg.Len())
	})

	t.Run("rejects past fire times", func(t *testing.T) {
		t.Parallel()

		reg, err := alarm.NewRegistry((&fireRecorder{}).fire)
		require.NoError(t, err)
		defer reg.Close()

		assert.ErrorIs(t, reg.RegisterExact(1, time.Now().Add(-time.Second), "late"), alarm.ErrPastFireTime)
		assert.ErrorIs(t, reg.RegisterExact(1, time.Now(), "now"), alarm.ErrPastFireTime)
		assert.Zero(t, reg.Len())
	})

	t.Run("denied when exact scheduling is disabled", func(t *testing.T) {
		t.Parallel()

		reg, err := alarm.NewRegistry((&fireRecorder{}).fire, alarm.WithExactDisabled())
		require.NoError(t, err)
		defer reg.Close()

		assert.False(t, reg.CanScheduleExact())
		assert.ErrorIs(t, reg.RegisterExact(1, time.Now().Add(time.Hour), "x"), alarm.ErrExactUnavailable)
	})

	t.Run("same identity replaces the prior registration", func(t *testing.T) {
		t.Parallel()

		rec := &fireRecorder{}
		reg, err := alarm.NewRegistry(rec.fire)
		require.NoError(t, err)
		defer reg.Close()

		require.NoError(t, reg.RegisterExact(7, time.Now().Add(time.Hour), "old"))
		require.NoError(t, reg.RegisterExact(7, time.Now().Add(30*time.Millisecond), "new"))
		assert.Equal(t, 1, reg.Len())

		assert.Eventually(t, func() bool {
			return len(rec.fired()) == 1
		}, time.Second, 5*time.Millisecond)
		assert.Equal(t, []string{"new"}, rec.fired())
	})
}

func TestRegistry_Coarsening(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.March, 10, 12, 0, 30, 0, time.UTC)
	reg, err := alarm.NewRegistry((&fireRecorder{}).fire,
		alarm.WithClock(func() time.Time { return now }))
	require.NoError(t, err)
	defer reg.Close()

	// Inexact coarsens to the next minute, deferrable to the next five
	// minutes; both still land in the future relative to the clock.
	assert.NoError(t, reg.RegisterInexact(1, now.Add(time.Second), "a"))
	assert.NoError(t, reg.RegisterDeferrable(2, now.Add(time.Second), "b"))
	assert.Equal(t, 2, reg.Len())
}

func TestRegistry_Cancel(t *testing.T) {
	t.Parallel()

	rec := &fireRecorder{}
	reg, err := alarm.NewRegistry(rec.fire)
	require.NoError(t, err)
	defer reg.Close()

	require.NoError(t, reg.RegisterExact(1, time.Now().Add(50*time.Millisecond), "x"))
	require.NoError(t, reg.Cancel(1))
	assert.Zero(t, reg.Len())

	// Cancelling an identity that was never registered is a no-op.
	assert.NoError(t, reg.Cancel(42))

	time.Sleep(100 * time.Millisecond)
	assert.Empty(t, rec.fired())
}

func TestRegistry_Close(t *testing.T) {
	t.Parallel()

	rec := &fireRecorder{}
	reg, err := alarm.NewRegistry(rec.fire)
	require.NoError(t, err)

	require.NoError(t, reg.RegisterExact(1, time.Now().Add(50*time.Millisecond), "x"))
	require.NoError(t, reg.Close())
	assert.Zero(t, reg.Len())

	assert.ErrorIs(t, reg.RegisterExact(2, time.Now().Add(time.Hour), "y"), alarm.ErrRegistryClosed)

	time.Sleep(100 * time.Millisecond)
	assert.Empty(t, rec.fired())

	// Close is idempotent.
	assert.NoError(t, reg.Close())
}
