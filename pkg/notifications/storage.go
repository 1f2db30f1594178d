package notifications

import "context"

// Storage handles notification persistence and retrieval.
type Storage interface {
	// Put stores a notification, replacing any existing entry with the
	// same (userID, ID).
	Put(ctx context.Context, notif Notification) error

	// Get retrieves a single notification. Returns ErrNotFound when absent.
	Get(ctx context.Context, userID, notifID string) (*Notification, error)

	// List returns notifications for a user, newest first.
	List(ctx context.Context, userID string, opts ListOptions) ([]Notification, error)

	// MarkRead marks notification(s) as read. Unknown IDs are skipped.
	MarkRead(ctx context.Context, userID string, notifIDs ...string) error

	// Delete removes notification(s). Unknown IDs are skipped.
	Delete(ctx context.Context, userID string, notifIDs ...string) error

	// CountUnread returns the unread count for a user.
	CountUnread(ctx context.Context, userID string) (int, error)
}

// ListOptions filters and paginates inbox listings.
type ListOptions struct {
	Limit      int     // maximum notifications to return (0 = no limit)
	Offset     int     // notifications to skip for pagination
	OnlyUnread bool    // when true, only unread notifications
	Channel    Channel // when set, only this channel
}
