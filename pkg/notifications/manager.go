package notifications

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/jhonnyxt/loantracker/pkg/reminder"
)

// Manager orchestrates notification storage and delivery.
type Manager struct {
	storage   Storage
	deliverer Deliverer
	logger    *slog.Logger
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithManagerLogger sets the logger for the Manager.
func WithManagerLogger(logger *slog.Logger) ManagerOption {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithDeliverer sets the real-time deliverer. Defaults to NoOpDeliverer.
func WithDeliverer(deliverer Deliverer) ManagerOption {
	return func(m *Manager) {
		if deliverer != nil {
			m.deliverer = deliverer
		}
	}
}

// NewManager creates a notification manager.
func NewManager(storage Storage, opts ...ManagerOption) (*Manager, error) {
	if storage == nil {
		return nil, ErrStorageNil
	}
	m := &Manager{
		storage:   storage,
		deliverer: NoOpDeliverer{},
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Send stores the notification, then attempts real-time delivery. Delivery
// failure is logged but does not fail the operation; the notification is
// already persisted and retrievable.
func (m *Manager) Send(ctx context.Context, notif Notification) error {
	if notif.CreatedAt.IsZero() {
		notif.CreatedAt = time.Now()
	}

	if err := m.storage.Put(ctx, notif); err != nil {
		return fmt.Errorf("failed to store notification: %w", err)
	}

	if err := m.deliverer.Deliver(ctx, notif); err != nil {
		m.logger.WarnContext(ctx, "notification stored but real-time delivery failed",
			slog.String("notification_id", notif.ID),
			slog.String("user_id", notif.UserID),
			slog.Any("error", err))
	}
	return nil
}

// Show implements the loan reminder presenter contract
// (reminder.Presenter). The numeric identity maps to a stable storage ID,
// so repeated fires for the same loan replace the prior inbox entry.
func (m *Manager) Show(ctx context.Context, notificationID int64, notice reminder.Notice) error {
	return m.Send(ctx, Notification{
		ID:      strconv.FormatInt(notificationID, 10),
		UserID:  notice.UserID,
		Channel: Channel(notice.Channel),
		Title:   notice.Title,
		Message: notice.Body,
	})
}

// Get retrieves a single notification.
func (m *Manager) Get(ctx context.Context, userID, notifID string) (*Notification, error) {
	return m.storage.Get(ctx, userID, notifID)
}

// List returns notifications for a user.
func (m *Manager) List(ctx context.Context, userID string, opts ListOptions) ([]Notification, error) {
	return m.storage.List(ctx, userID, opts)
}

// MarkRead marks notification(s) as read.
func (m *Manager) MarkRead(ctx context.Context, userID string, notifIDs ...string) error {
	return m.storage.MarkRead(ctx, userID, notifIDs...)
}

// MarkAllRead marks every unread notification as read for a user.
func (m *Manager) MarkAllRead(ctx context.Context, userID string) error {
	unread, err := m.storage.List(ctx, userID, ListOptions{OnlyUnread: true})
	if err != nil {
		return err
	}
	if len(unread) == 0 {
		return nil
	}
	ids := make([]string, len(unread))
	for i, n := range unread {
		ids[i] = n.ID
	}
	return m.storage.MarkRead(ctx, userID, ids...)
}

// Delete removes notification(s).
func (m *Manager) Delete(ctx context.Context, userID string, notifIDs ...string) error {
	return m.storage.Delete(ctx, userID, notifIDs...)
}

// CountUnread returns the unread count for a user.
func (m *Manager) CountUnread(ctx context.Context, userID string) (int, error) {
	return m.storage.CountUnread(ctx, userID)
}
