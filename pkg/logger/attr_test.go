package logger_test

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhonnyxt/loantracker/pkg/logger"
)

func TestError(t *testing.T) {
	t.Parallel()

	assert.Equal(t, slog.Attr{}, logger.Error(nil))

	err := errors.New("boom")
	attr := logger.Error(err)
	assert.Equal(t, "error", attr.Key)
}

func TestErrors(t *testing.T) {
	t.Parallel()

	assert.Equal(t, slog.Attr{}, logger.Errors(nil, nil))

	attr := logger.Errors(errors.New("a"), nil, errors.New("b"))
	assert.Equal(t, "errors", attr.Key)
	assert.Len(t, attr.Value.Group(), 2)
}

func TestIdentityAttrs(t *testing.T) {
	t.Parallel()

	assert.Equal(t, slog.Attr{}, logger.UserID(nil))
	assert.Equal(t, slog.Attr{}, logger.BookID(nil))

	assert.Equal(t, "user_id", logger.UserID("user-1").Key)
	assert.Equal(t, "book_id", logger.BookID("book-1").Key)
	assert.Equal(t, "request_id", logger.RequestID("req-1").Key)
}

func TestReminderAttrs(t *testing.T) {
	t.Parallel()

	attr := logger.DaysUntilDue(-3)
	assert.Equal(t, "days_until_due", attr.Key)
	assert.Equal(t, int64(-3), attr.Value.Int64())

	assert.Equal(t, "slot", logger.Slot(2).Key)
	assert.Equal(t, "tier", logger.Tier("critical").Key)
	assert.Equal(t, "component", logger.Component("scheduler").Key)
}
