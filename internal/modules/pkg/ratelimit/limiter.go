package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// counterScript increments the per-key counter and sets the window expiry on
// first increment, atomically. Atomicity matters: concurrent attempts must not
// be able to race past the limit
const counterScript = `
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
if current > tonumber(ARGV[2]) then
  return 0
end
return 1
`

// RedisLimiter is a fixed-window counter limiter backed by Redis, shared
// across all instances of the service
type RedisLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
	prefix string
	script *redis.Script
}

func NewRedisLimiter(client *redis.Client, limit int, window time.Duration, prefix string) *RedisLimiter {
	return &RedisLimiter{
		client: client,
		limit:  limit,
		window: window,
		prefix: prefix,
		script: redis.NewScript(counterScript),
	}
}

// Allow records one attempt for key and reports whether it is within the
// configured limit for the current window. Errors are returned to the caller
// rather than swallowed: limits guarding credentials must fail closed
func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	redisKey := key
	if l.prefix != "" {
		redisKey = l.prefix + ":" + key
	}

	ttl := l.window.Milliseconds()
	if ttl <= 0 {
		ttl = 1
	}

	allowed, err := l.script.Run(ctx, l.client, []string{redisKey}, ttl, l.limit).Int64()
	if err != nil {
		return false, fmt.Errorf("ratelimit: failed to run counter script: %w", err)
	}
	return allowed == 1, nil
}

// Peek reports whether key is still within the limit for the current window
// without recording an attempt. A key with no counter yet is always allowed
func (l *RedisLimiter) Peek(ctx context.Context, key string) (bool, error) {
	redisKey := key
	if l.prefix != "" {
		redisKey = l.prefix + ":" + key
	}

	current, err := l.client.Get(ctx, redisKey).Int()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return true, nil
		}
		return false, fmt.Errorf("ratelimit: failed to read counter: %w", err)
	}
	return current < l.limit, nil
}

// Window exposes the configured window so callers can build retry-after hints
func (l *RedisLimiter) Window() time.Duration {
	return l.window
}
