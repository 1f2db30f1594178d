package notifications

import "time"

// Channel groups notifications by origin for filtering and presentation.
type Channel string

const (
	ChannelReminders   Channel = "reminders"
	ChannelOverdue     Channel = "overdue"
	ChannelAssignments Channel = "assignments"
	ChannelWishlist    Channel = "wishlist"
)

// Notification is the core inbox entry. IDs are caller-chosen; reminder
// fires reuse a loan's stable identity so newer entries replace older ones.
type Notification struct {
	ID        string            `json:"id"`
	UserID    string            `json:"user_id"`
	Channel   Channel           `json:"channel"`
	Title     string            `json:"title"`
	Message   string            `json:"message"`
	Data      map[string]string `json:"data,omitempty"`
	Read      bool              `json:"read"`
	ReadAt    *time.Time        `json:"read_at,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// MarkAsRead marks the notification as read with the current timestamp.
func (n *Notification) MarkAsRead() {
	n.Read = true
	now := time.Now()
	n.ReadAt = &now
}
