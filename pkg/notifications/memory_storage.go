package notifications

import (
	"context"
	"sort"
	"sync"
)

// MemoryStorage implements Storage for testing and local development.
type MemoryStorage struct {
	mu     sync.RWMutex
	byUser map[string]map[string]Notification
}

// NewMemoryStorage creates a new in-memory storage implementation.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		byUser: make(map[string]map[string]Notification),
	}
}

// Put implements Storage with upsert semantics.
func (ms *MemoryStorage) Put(ctx context.Context, notif Notification) error {
	if notif.ID == "" || notif.UserID == "" {
		return ErrInvalidNotification
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()

	inbox, ok := ms.byUser[notif.UserID]
	if !ok {
		inbox = make(map[string]Notification)
		ms.byUser[notif.UserID] = inbox
	}
	inbox[notif.ID] = notif
	return nil
}

// Get implements Storage.
func (ms *MemoryStorage) Get(ctx context.Context, userID, notifID string) (*Notification, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	if n, ok := ms.byUser[userID][notifID]; ok {
		return &n, nil
	}
	return nil, ErrNotFound
}

// List implements Storage, newest first.
func (ms *MemoryStorage) List(ctx context.Context, userID string, opts ListOptions) ([]Notification, error) {
	ms.mu.RLock()
	matched := make([]Notification, 0, len(ms.byUser[userID]))
	for _, n := range ms.byUser[userID] {
		if opts.OnlyUnread && n.Read {
			continue
		}
		if opts.Channel != "" && n.Channel != opts.Channel {
			continue
		}
		matched = append(matched, n)
	}
	ms.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID > matched[j].ID
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	if opts.Offset > 0 {
		if opts.Offset >= len(matched) {
			return nil, nil
		}
		matched = matched[opts.Offset:]
	}
	if opts.Limit > 0 && len(matched) > opts.Limit {
		matched = matched[:opts.Limit]
	}
	return matched, nil
}

// MarkRead implements Storage.
func (ms *MemoryStorage) MarkRead(ctx context.Context, userID string, notifIDs ...string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	inbox := ms.byUser[userID]
	for _, id := range notifIDs {
		if n, ok := inbox[id]; ok {
			n.MarkAsRead()
			inbox[id] = n
		}
	}
	return nil
}

// Delete implements Storage.
func (ms *MemoryStorage) Delete(ctx context.Context, userID string, notifIDs ...string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	inbox := ms.byUser[userID]
	for _, id := range notifIDs {
		delete(inbox, id)
	}
	return nil
}

// CountUnread implements Storage.
func (ms *MemoryStorage) CountUnread(ctx context.Context, userID string) (int, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	count := 0
	for _, n := range ms.byUser[userID] {
		if !n.Read {
			count++
		}
	}
	return count, nil
}
