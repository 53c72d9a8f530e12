package port

import (
	"context"
	"time"
)

// TokenCache is a key/value store with per-entry TTL. Entries self-expire and
// expired entries behave as absent on Get. Every operation is independent,
// with no cross-key transactions.
type TokenCache interface {
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	// Get returns the stored value and whether the key was present.
	Get(ctx context.Context, key string) (string, bool, error)
	Delete(ctx context.Context, key string) error
}
