package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGStorage implements Storage on PostgreSQL. The schema lives in the goose
// migrations under migrations/.
type PGStorage struct {
	pool *pgxpool.Pool
}

// NewPGStorage creates a Postgres-backed notification storage.
func NewPGStorage(pool *pgxpool.Pool) (*PGStorage, error) {
	if pool == nil {
		return nil, ErrStorageNil
	}
	return &PGStorage{pool: pool}, nil
}

// Put implements Storage. A conflicting (user_id, id) pair is overwritten
// and its read state reset, so a re-fired reminder surfaces as unread again.
func (s *PGStorage) Put(ctx context.Context, notif Notification) error {
	if notif.ID == "" || notif.UserID == "" {
		return ErrInvalidNotification
	}

	data, err := json.Marshal(notif.Data)
	if err != nil {
		return fmt.Errorf("failed to marshal notification data: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO notifications (id, user_id, channel, title, message, data, read, read_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, FALSE, NULL, $7)
		ON CONFLICT (user_id, id) DO UPDATE SET
			channel = EXCLUDED.channel,
			title = EXCLUDED.title,
			message = EXCLUDED.message,
			data = EXCLUDED.data,
			read = FALSE,
			read_at = NULL,
			created_at = EXCLUDED.created_at`,
		notif.ID, notif.UserID, notif.Channel, notif.Title, notif.Message, data, notif.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to store notification %q: %w", notif.ID, err)
	}
	return nil
}

// Get implements Storage.
func (s *PGStorage) Get(ctx context.Context, userID, notifID string) (*Notification, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, user_id, channel, title, message, data, read, read_at, created_at
		FROM notifications
		WHERE user_id = $1 AND id = $2`,
		userID, notifID)

	n, err := scanNotification(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load notification %q: %w", notifID, err)
	}
	return n, nil
}

// List implements Storage, newest first.
func (s *PGStorage) List(ctx context.Context, userID string, opts ListOptions) ([]Notification, error) {
	query := `
		SELECT id, user_id, channel, title, message, data, read, read_at, created_at
		FROM notifications
		WHERE user_id = $1`
	args := []any{userID}

	if opts.OnlyUnread {
		query += ` AND read = FALSE`
	}
	if opts.Channel != "" {
		args = append(args, opts.Channel)
		query += fmt.Sprintf(` AND channel = $%d`, len(args))
	}
	query += ` ORDER BY created_at DESC, id DESC`
	if opts.Limit > 0 {
		args = append(args, opts.Limit)
		query += fmt.Sprintf(` LIMIT $%d`, len(args))
	}
	if opts.Offset > 0 {
		args = append(args, opts.Offset)
		query += fmt.Sprintf(` OFFSET $%d`, len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	var out []Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification row: %w", err)
		}
		out = append(out, *n)
	}
	return out, rows.Err()
}

// MarkRead implements Storage.
func (s *PGStorage) MarkRead(ctx context.Context, userID string, notifIDs ...string) error {
	if len(notifIDs) == 0 {
		return nil
	}
	_, err := s.pool.Exec(ctx, `
		UPDATE notifications
		SET read = TRUE, read_at = NOW()
		WHERE user_id = $1 AND id = ANY($2)`,
		userID, notifIDs)
	if err != nil {
		return fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return nil
}

// Delete implements Storage.
func (s *PGStorage) Delete(ctx context.Context, userID string, notifIDs ...string) error {
	if len(notifIDs) == 0 {
		return nil
	}
	_, err := s.pool.Exec(ctx, `
		DELETE FROM notifications
		WHERE user_id = $1 AND id = ANY($2)`,
		userID, notifIDs)
	if err != nil {
		return fmt.Errorf("failed to delete notifications: %w", err)
	}
	return nil
}

// CountUnread implements Storage.
func (s *PGStorage) CountUnread(ctx context.Context, userID string) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM notifications
		WHERE user_id = $1 AND read = FALSE`,
		userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}

func scanNotification(row pgx.Row) (*Notification, error) {
	var (
		n    Notification
		data []byte
	)
	if err := row.Scan(&n.ID, &n.UserID, &n.Channel, &n.Title, &n.Message, &data, &n.Read, &n.ReadAt, &n.CreatedAt); err != nil {
		return nil, err
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &n.Data); err != nil {
			return nil, fmt.Errorf("failed to unmarshal notification data: %w", err)
		}
	}
	return &n, nil
}
