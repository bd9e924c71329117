package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers which event deliveries a subscriber has
// already handled, so an at-least-once outbox cannot double-apply a side
// effect such as releasing a reservation.
type IdempotencyStore interface {
	// MarkProcessed claims key for ttl. It returns false when the key was
	// already claimed.
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)
	IsProcessed(ctx context.Context, key string) (bool, error)
	// Release forgets key so a failed delivery can be retried before ttl expires
	Release(ctx context.Context, key string) error
	Close() error
}

// IdempotencyConfig controls deduplication of subscriber deliveries
type IdempotencyConfig struct {
	Enabled bool
	// TTL bounds how long a processed key is remembered
	TTL time.Duration
}

// DefaultIdempotencyConfig remembers keys for a day
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{Enabled: true, TTL: 24 * time.Hour}
}
