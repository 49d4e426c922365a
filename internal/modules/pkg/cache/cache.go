package cache

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss is returned by Get when the key is absent or already expired
var ErrCacheMiss = errors.New("cache: key not found")

// Cache is a plain key/value store with per-key expiry. It makes no promises
// beyond last-writer-wins on concurrent Set calls for the same key;
// read-through behavior is the caller's responsibility
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Invalidate(ctx context.Context, key string) error
}
