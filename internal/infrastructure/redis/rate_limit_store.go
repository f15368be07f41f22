package redis

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// CounterStore implements the fixed-window request counter on Redis. The
// increment, the window-start expiry and the TTL read run in one pipeline:
// INCR is atomic, so two concurrent requests can never observe the same
// count, and EXPIRE NX pins the window to the first request that opened it.
// TTL expiry retires lapsed windows without an explicit check.
type CounterStore struct {
	rdb    *redis.Client
	prefix string
}

// CounterOption configures a CounterStore.
type CounterOption func(*CounterStore)

// WithCounterPrefix overrides the key prefix.
func WithCounterPrefix(prefix string) CounterOption {
	return func(s *CounterStore) { s.prefix = strings.Trim(prefix, ":") }
}

// NewCounterStore builds the window counter on an existing Redis client.
func NewCounterStore(rdb *redis.Client, opts ...CounterOption) *CounterStore {
	s := &CounterStore{rdb: rdb, prefix: "rate_limit"}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Incr bumps the counter of key for the current window and returns the new
// count together with the remaining window duration.
func (s *CounterStore) Incr(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	k := s.prefix + ":" + key

	pipe := s.rdb.Pipeline()
	incr := pipe.Incr(ctx, k)
	pipe.ExpireNX(ctx, k, window)
	ttl := pipe.TTL(ctx, k)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, 0, err
	}

	remaining := ttl.Val()
	if remaining <= 0 {
		remaining = window
	}
	return incr.Val(), remaining, nil
}
