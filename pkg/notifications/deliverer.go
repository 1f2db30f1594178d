package notifications

import (
	"context"
	"log/slog"
)

// Deliverer handles real-time notification delivery. Delivery is best
// effort everywhere: the Manager persists before delivering, so a failed
// delivery loses nothing.
type Deliverer interface {
	// Deliver sends one notification to its user.
	Deliver(ctx context.Context, notif Notification) error

	// DeliverBatch sends multiple notifications.
	DeliverBatch(ctx context.Context, notifs []Notification) error
}

// MultiDeliverer fans one notification out over several channels. Failing
// channels are logged and skipped.
type MultiDeliverer struct {
	deliverers []Deliverer
	logger     *slog.Logger
}

// NewMultiDeliverer creates a multi-channel deliverer.
func NewMultiDeliverer(logger *slog.Logger, deliverers ...Deliverer) *MultiDeliverer {
	if logger == nil {
		logger = slog.Default()
	}
	return &MultiDeliverer{deliverers: deliverers, logger: logger}
}

// Deliver implements Deliverer.
func (m *MultiDeliverer) Deliver(ctx context.Context, notif Notification) error {
	for i, d := range m.deliverers {
		if err := d.Deliver(ctx, notif); err != nil {
			m.logger.WarnContext(ctx, "notification delivery channel failed",
				slog.String("notification_id", notif.ID),
				slog.String("user_id", notif.UserID),
				slog.Int("deliverer_index", i),
				slog.Any("error", err))
		}
	}
	return nil
}

// DeliverBatch implements Deliverer.
func (m *MultiDeliverer) DeliverBatch(ctx context.Context, notifs []Notification) error {
	for i, d := range m.deliverers {
		if err := d.DeliverBatch(ctx, notifs); err != nil {
			m.logger.WarnContext(ctx, "notification batch delivery channel failed",
				slog.Int("notification_count", len(notifs)),
				slog.Int("deliverer_index", i),
				slog.Any("error", err))
		}
	}
	return nil
}

// NoOpDeliverer does nothing. Useful for tests and for deployments without
// a real-time surface.
type NoOpDeliverer struct{}

// Deliver implements Deliverer.
func (NoOpDeliverer) Deliver(ctx context.Context, notif Notification) error { return nil }

// DeliverBatch implements Deliverer.
func (NoOpDeliverer) DeliverBatch(ctx context.Context, notifs []Notification) error { return nil }
