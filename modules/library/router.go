package library

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jhonnyxt/loantracker/pkg/notifications"
	"github.com/jhonnyxt/loantracker/pkg/reminder"
)

// RouterOptions wires the collaborators the HTTP surface exposes. Service is
// required; Inbox and Rehydrator are optional and their routes are only
// mounted when provided.
type RouterOptions struct {
	Service    *Service
	Inbox      *notifications.Manager
	Rehydrator *reminder.Rehydrator
	Healths    []HealthCheck
	Logger     *slog.Logger
}

// HealthCheck probes one dependency. A non-nil error marks the service
// unhealthy.
type HealthCheck func(ctx context.Context) error

// Router builds the library HTTP API.
//
//	GET    /health
//	GET    /books                      catalog
//	POST   /books
//	GET    /books/{bookID}
//	PUT    /books/{bookID}
//	DELETE /books/{bookID}
//	POST   /books/{bookID}/assignments        assign to a user
//	DELETE /books/{bookID}/assignments/{userID}  return
//	PUT    /books/{bookID}/assignments/{userID}  extend due date
//	GET    /loans                      all open loans
//	GET    /users/{userID}/loans
//	POST   /books/{bookID}/wishlist
//	GET    /users/{userID}/wishlist
//	DELETE /wishlist/{wishID}
//	GET    /users/{userID}/notifications
//	POST   /users/{userID}/notifications/read
//	POST   /system/rehydrate           restart signal, rebuilds reminders
//	POST   /system/overdue-digest      email borrowers with overdue copies
func Router(opts RouterOptions) chi.Router {
	h := &handlers{
		svc:        opts.Service,
		inbox:      opts.Inbox,
		rehydrator: opts.Rehydrator,
		healths:    opts.Healths,
		logger:     opts.Logger,
	}
	if h.logger == nil {
		h.logger = slog.Default()
	}

	r := chi.NewRouter()

	r.Get("/health", h.health)

	r.Route("/books", func(r chi.Router) {
		r.Get("/", h.listBooks)
		r.Post("/", h.createBook)
		r.Route("/{bookID}", func(r chi.Router) {
			r.Get("/", h.getBook)
			r.Put("/", h.updateBook)
			r.Delete("/", h.deleteBook)
			r.Post("/assignments", h.assign)
			r.Delete("/assignments/{userID}", h.returnBook)
			r.Put("/assignments/{userID}", h.extendDueDate)
			r.Post("/wishlist", h.addWish)
		})
	})

	r.Get("/loans", h.listLoans)
	r.Route("/users/{userID}", func(r chi.Router) {
		r.Get("/loans", h.userLoans)
		r.Get("/wishlist", h.userWishlist)
		if h.inbox != nil {
			r.Get("/notifications", h.listNotifications)
			r.Post("/notifications/read", h.markNotificationsRead)
		}
	})
	r.Delete("/wishlist/{wishID}", h.removeWish)

	if h.rehydrator != nil {
		r.Post("/system/rehydrate", h.rehydrate)
		r.Post("/system/overdue-digest", h.overdueDigest)
	}

	return r
}

type handlers struct {
	svc        *Service
	inbox      *notifications.Manager
	rehydrator *reminder.Rehydrator
	healths    []HealthCheck
	logger     *slog.Logger
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *handlers) respond(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("failed to encode response", slog.Any("error", err))
	}
}

// respondErr maps domain sentinel errors onto HTTP status codes.
func (h *handlers) respondErr(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ErrBookNotFound), errors.Is(err, ErrWishNotFound):
		status = http.StatusNotFound
	case errors.Is(err, ErrBookExists), errors.Is(err, ErrWishExists),
		errors.Is(err, ErrAlreadyBorrowed), errors.Is(err, ErrNotBorrowed),
		errors.Is(err, ErrNoCopiesAvailable):
		status = http.StatusConflict
	case errors.Is(err, ErrInvalidBook), errors.Is(err, ErrInvalidAssignment):
		status = http.StatusUnprocessableEntity
	}
	h.respond(w, status, errorResponse{Error: err.Error()})
}

func (h *handlers) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		h.respond(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return false
	}
	return true
}

func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	for _, check := range h.healths {
		if err := check(r.Context()); err != nil {
			h.respond(w, http.StatusServiceUnavailable, map[string]string{
				"status": "unhealthy",
				"error":  err.Error(),
			})
			return
		}
	}
	h.respond(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handlers) listBooks(w http.ResponseWriter, r *http.Request) {
	books, err := h.svc.ListBooks(r.Context())
	if err != nil {
		h.respondErr(w, err)
		return
	}
	h.respond(w, http.StatusOK, books)
}

func (h *handlers) createBook(w http.ResponseWriter, r *http.Request) {
	var book Book
	if !h.decode(w, r, &book) {
		return
	}
	created, err := h.svc.CreateBook(r.Context(), book)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	h.respond(w, http.StatusCreated, created)
}

func (h *handlers) getBook(w http.ResponseWriter, r *http.Request) {
	book, err := h.svc.GetBook(r.Context(), chi.URLParam(r, "bookID"))
	if err != nil {
		h.respondErr(w, err)
		return
	}
	h.respond(w, http.StatusOK, book)
}

func (h *handlers) updateBook(w http.ResponseWriter, r *http.Request) {
	var book Book
	if !h.decode(w, r, &book) {
		return
	}
	book.ID = chi.URLParam(r, "bookID")
	updated, err := h.svc.UpdateBook(r.Context(), book)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	h.respond(w, http.StatusOK, updated)
}

func (h *handlers) deleteBook(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteBook(r.Context(), chi.URLParam(r, "bookID")); err != nil {
		h.respondErr(w, err)
		return
	}
	h.respond(w, http.StatusNoContent, nil)
}

func (h *handlers) assign(w http.ResponseWriter, r *http.Request) {
	var params AssignParams
	if !h.decode(w, r, &params) {
		return
	}
	book, err := h.svc.Assign(r.Context(), chi.URLParam(r, "bookID"), params)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	h.respond(w, http.StatusCreated, book)
}

func (h *handlers) returnBook(w http.ResponseWriter, r *http.Request) {
	book, err := h.svc.Return(r.Context(), chi.URLParam(r, "bookID"), chi.URLParam(r, "userID"))
	if err != nil {
		h.respondErr(w, err)
		return
	}
	h.respond(w, http.StatusOK, book)
}

func (h *handlers) extendDueDate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		DueAt time.Time `json:"due_at"`
	}
	if !h.decode(w, r, &body) {
		return
	}
	if body.DueAt.IsZero() {
		h.respond(w, http.StatusBadRequest, errorResponse{Error: "due_at is required"})
		return
	}
	book, err := h.svc.ExtendDueDate(r.Context(), chi.URLParam(r, "bookID"), chi.URLParam(r, "userID"), body.DueAt)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	h.respond(w, http.StatusOK, book)
}

func (h *handlers) listLoans(w http.ResponseWriter, r *http.Request) {
	loans, err := h.svc.ListLoans(r.Context())
	if err != nil {
		h.respondErr(w, err)
		return
	}
	h.respond(w, http.StatusOK, loans)
}

func (h *handlers) userLoans(w http.ResponseWriter, r *http.Request) {
	loans, err := h.svc.UserLoans(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		h.respondErr(w, err)
		return
	}
	h.respond(w, http.StatusOK, loans)
}

func (h *handlers) addWish(w http.ResponseWriter, r *http.Request) {
	var body struct {
		UserID string `json:"user_id"`
		Email  string `json:"email,omitempty"`
	}
	if !h.decode(w, r, &body) {
		return
	}
	if body.UserID == "" {
		h.respond(w, http.StatusBadRequest, errorResponse{Error: "user_id is required"})
		return
	}
	wish, err := h.svc.AddToWishlist(r.Context(), chi.URLParam(r, "bookID"), body.UserID, body.Email)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	h.respond(w, http.StatusCreated, wish)
}

func (h *handlers) userWishlist(w http.ResponseWriter, r *http.Request) {
	wishes, err := h.svc.Wishlist(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		h.respondErr(w, err)
		return
	}
	h.respond(w, http.StatusOK, wishes)
}

func (h *handlers) removeWish(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.RemoveFromWishlist(r.Context(), chi.URLParam(r, "wishID")); err != nil {
		h.respondErr(w, err)
		return
	}
	h.respond(w, http.StatusNoContent, nil)
}

func (h *handlers) listNotifications(w http.ResponseWriter, r *http.Request) {
	opts := notifications.ListOptions{}
	if r.URL.Query().Get("unread") == "true" {
		opts.OnlyUnread = true
	}
	if ch := r.URL.Query().Get("channel"); ch != "" {
		opts.Channel = notifications.Channel(ch)
	}
	list, err := h.inbox.List(r.Context(), chi.URLParam(r, "userID"), opts)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	h.respond(w, http.StatusOK, list)
}

func (h *handlers) markNotificationsRead(w http.ResponseWriter, r *http.Request) {
	var body struct {
		IDs []string `json:"ids,omitempty"`
	}
	if !h.decode(w, r, &body) {
		return
	}

	userID := chi.URLParam(r, "userID")
	var err error
	if len(body.IDs) == 0 {
		err = h.inbox.MarkAllRead(r.Context(), userID)
	} else {
		err = h.inbox.MarkRead(r.Context(), userID, body.IDs...)
	}
	if err != nil {
		h.respondErr(w, err)
		return
	}
	h.respond(w, http.StatusNoContent, nil)
}

// rehydrate is the restart signal. It kicks the reminder rebuild off in the
// background and returns immediately, mirroring how a boot receiver works.
func (h *handlers) rehydrate(w http.ResponseWriter, r *http.Request) {
	h.rehydrator.OnRestart(r.Context())
	h.respond(w, http.StatusAccepted, map[string]string{"status": "rehydration started"})
}

// overdueDigest sweeps open loans and emails borrowers with overdue copies.
func (h *handlers) overdueDigest(w http.ResponseWriter, r *http.Request) {
	sent, err := h.svc.SendOverdueDigest(r.Context())
	if err != nil {
		h.respondErr(w, err)
		return
	}
	h.respond(w, http.StatusOK, map[string]int{"sent": sent})
}
