package notifications

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// defaultChannelPrefix namespaces the per-user pub/sub channels.
const defaultChannelPrefix = "notifications"

// RedisDeliverer publishes notifications to a per-user Redis pub/sub
// channel, letting any connected frontend pick them up in real time.
type RedisDeliverer struct {
	client *redis.Client
	prefix string
}

// RedisDelivererOption configures a RedisDeliverer.
type RedisDelivererOption func(*RedisDeliverer)

// WithChannelPrefix overrides the pub/sub channel prefix.
func WithChannelPrefix(prefix string) RedisDelivererOption {
	return func(d *RedisDeliverer) {
		if prefix != "" {
			d.prefix = prefix
		}
	}
}

// NewRedisDeliverer creates a Redis pub/sub deliverer.
func NewRedisDeliverer(client *redis.Client, opts ...RedisDelivererOption) *RedisDeliverer {
	d := &RedisDeliverer{
		client: client,
		prefix: defaultChannelPrefix,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Deliver implements Deliverer.
func (d *RedisDeliverer) Deliver(ctx context.Context, notif Notification) error {
	payload, err := json.Marshal(notif)
	if err != nil {
		return fmt.Errorf("failed to marshal notification %q: %w", notif.ID, err)
	}
	if err := d.client.Publish(ctx, d.channelFor(notif.UserID), payload).Err(); err != nil {
		return fmt.Errorf("failed to publish notification %q: %w", notif.ID, err)
	}
	return nil
}

// DeliverBatch implements Deliverer.
func (d *RedisDeliverer) DeliverBatch(ctx context.Context, notifs []Notification) error {
	for _, notif := range notifs {
		if err := d.Deliver(ctx, notif); err != nil {
			return err
		}
	}
	return nil
}

func (d *RedisDeliverer) channelFor(userID string) string {
	return d.prefix + ":" + userID
}
