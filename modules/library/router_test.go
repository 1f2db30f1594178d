package library_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhonnyxt/loantracker/modules/library"
	"github.com/jhonnyxt/loantracker/pkg/notifications"
)

func newTestRouter(t *testing.T) (http.Handler, *fixture) {
	t.Helper()

	f := newFixture(t)
	inbox, err := notifications.NewManager(notifications.NewMemoryStorage())
	require.NoError(t, err)

	r := library.Router(library.RouterOptions{
		Service: f.svc,
		Inbox:   inbox,
	})
	return r, f
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRouter_Health(t *testing.T) {
	t.Parallel()

	h, _ := newTestRouter(t)
	rec := doJSON(t, h, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestRouter_HealthFailure(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	h := library.Router(library.RouterOptions{
		Service: f.svc,
		Healths: []library.HealthCheck{
			func(ctx context.Context) error { return assert.AnError },
		},
	})

	rec := doJSON(t, h, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRouter_BookLifecycle(t *testing.T) {
	t.Parallel()

	h, _ := newTestRouter(t)

	rec := doJSON(t, h, http.MethodPost, "/books", map[string]any{
		"id":       "book-1",
		"title":    "Dune",
		"author":   "Frank Herbert",
		"quantity": 1,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/books/book-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var book library.Book
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &book))
	assert.Equal(t, "Dune", book.Title)

	rec = doJSON(t, h, http.MethodGet, "/books/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, h, http.MethodDelete, "/books/book-1", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRouter_AssignAndReturn(t *testing.T) {
	t.Parallel()

	h, f := newTestRouter(t)
	f.seedBook(t, 1)

	rec := doJSON(t, h, http.MethodPost, "/books/book-1/assignments", map[string]any{
		"user_id":   "user-1",
		"user_name": "Alice",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, []string{"ScheduleAssignmentNotice", "Schedule"}, f.scheduler.methods())

	// Second borrower hits the conflict path.
	rec = doJSON(t, h, http.MethodPost, "/books/book-1/assignments", map[string]any{
		"user_id":   "user-2",
		"user_name": "Bob",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(t, h, http.MethodDelete, "/books/book-1/assignments/user-1", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/loans", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var loans []library.UserLoan
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &loans))
	assert.Empty(t, loans)
}

func TestRouter_ExtendDueDate(t *testing.T) {
	t.Parallel()

	h, f := newTestRouter(t)
	f.seedBook(t, 1)

	rec := doJSON(t, h, http.MethodPost, "/books/book-1/assignments", map[string]any{
		"user_id":   "user-1",
		"user_name": "Alice",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, h, http.MethodPut, "/books/book-1/assignments/user-1", map[string]any{
		"due_at": testNow.AddDate(0, 0, 30),
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodPut, "/books/book-1/assignments/user-1", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_Wishlist(t *testing.T) {
	t.Parallel()

	h, f := newTestRouter(t)
	f.seedBook(t, 1)

	rec := doJSON(t, h, http.MethodPost, "/books/book-1/wishlist", map[string]any{
		"user_id": "user-2",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var wish library.WishItem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &wish))

	rec = doJSON(t, h, http.MethodGet, "/users/user-2/wishlist", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodDelete, "/wishlist/"+wish.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRouter_Notifications(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	inbox, err := notifications.NewManager(notifications.NewMemoryStorage())
	require.NoError(t, err)
	h := library.Router(library.RouterOptions{Service: f.svc, Inbox: inbox})

	require.NoError(t, inbox.Send(context.Background(), notifications.Notification{
		ID:      "n1",
		UserID:  "user-1",
		Channel: notifications.ChannelOverdue,
		Title:   "Book overdue",
	}))

	rec := doJSON(t, h, http.MethodGet, "/users/user-1/notifications?unread=true", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var list []notifications.Notification
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)

	rec = doJSON(t, h, http.MethodPost, "/users/user-1/notifications/read", map[string]any{})
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/users/user-1/notifications?unread=true", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list = nil
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Empty(t, list)
}

func TestRouter_OverdueDigest(t *testing.T) {
	t.Parallel()

	h, f := newTestRouter(t)

	rec := doJSON(t, h, http.MethodPost, "/books", map[string]any{
		"id": "book-1", "title": "Dune", "author": "Frank Herbert", "quantity": 1,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/books/book-1/assignments", map[string]any{
		"user_id":   "user-1",
		"user_name": "Alice",
		"email":     "alice@example.com",
		"due_at":    testNow.Add(-48 * time.Hour),
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	f.sender.sent = nil // drop the assignment confirmation

	rec = doJSON(t, h, http.MethodPost, "/system/overdue-digest", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"sent":1}`, rec.Body.String())

	require.Len(t, f.sender.sent, 1)
	assert.Equal(t, "alice@example.com", f.sender.sent[0].SendTo)
	assert.Equal(t, "loan-overdue", f.sender.sent[0].Tag)
}
