package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	red "github.com/redis/go-redis/v9"

	"github.com/wayfare-dev/wayfare/internal/core/port"
)

// TokenCache implements port.TokenCache on Redis. Keys expire on their own,
// so reads never see a stale entry.
type TokenCache struct {
	client *red.Client
}

// NewTokenCache wires Redis storage for session tokens and blacklist marks.
func NewTokenCache(client *red.Client) *TokenCache {
	return &TokenCache{client: client}
}

// Set stores value under key with the supplied TTL.
func (c *TokenCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if c == nil || c.client == nil {
		return fmt.Errorf("token cache not configured")
	}
	if ttl < 0 {
		ttl = 0
	}

	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}

	return nil
}

// Get returns the stored value and whether the key was present.
func (c *TokenCache) Get(ctx context.Context, key string) (string, bool, error) {
	if c == nil || c.client == nil {
		return "", false, fmt.Errorf("token cache not configured")
	}

	value, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, red.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("redis get %s: %w", key, err)
	}

	return value, true, nil
}

// Delete removes the key. Deleting an absent key is not an error.
func (c *TokenCache) Delete(ctx context.Context, key string) error {
	if c == nil || c.client == nil {
		return fmt.Errorf("token cache not configured")
	}

	if err := c.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}

	return nil
}

var _ port.TokenCache = (*TokenCache)(nil)
