package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Deduper tracks delivered event IDs so at-least-once consumers can apply
// events idempotently. Redis SET NX gives a shared marker across consumer
// instances; the TTL bounds memory for the marker set, not for the ledger.
type Deduper struct {
	client *redis.Client
	ttl    time.Duration
}

// NewDeduper wraps a Redis client. TTL should exceed the sink's maximum
// redelivery horizon.
func NewDeduper(client *redis.Client, ttl time.Duration) *Deduper {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Deduper{client: client, ttl: ttl}
}

// Seen marks the event as processed and reports whether it was already
// processed before this call.
func (d *Deduper) Seen(ctx context.Context, eventID string) (bool, error) {
	set, err := d.client.SetNX(ctx, dedupeKey(eventID), 1, d.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("dedupe mark: %w", err)
	}
	return !set, nil
}

func dedupeKey(eventID string) string {
	return "notify:seen:" + eventID
}
