package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	denyKeyPrefix = "deny:"
	minDenyTTL    = time.Second
)

// Denylist records revoked token IDs so that self-contained signed tokens can
// be invalidated before their natural expiry. Each entry carries a TTL equal
// to the token's remaining life; once the token would have expired anyway the
// entry evaporates on its own.
type Denylist struct {
	client *redis.Client
}

// NewDenylist creates a Denylist wrapping the given Redis client.
func NewDenylist(client *redis.Client) *Denylist {
	return &Denylist{client: client}
}

// Revoke marks the token ID revoked for ttl. A TTL below one second is
// clamped so the entry is not silently dropped by Redis.
func (d *Denylist) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl < minDenyTTL {
		ttl = minDenyTTL
	}
	if err := d.client.Set(ctx, d.key(tokenID), "1", ttl).Err(); err != nil {
		return fmt.Errorf("denylist revoke: %w", err)
	}
	return nil
}

// IsRevoked reports whether the token ID has been revoked.
func (d *Denylist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := d.client.Exists(ctx, d.key(tokenID)).Result()
	if err != nil {
		return false, fmt.Errorf("denylist check: %w", err)
	}
	return n > 0, nil
}

func (d *Denylist) key(tokenID string) string {
	return denyKeyPrefix + tokenID
}
