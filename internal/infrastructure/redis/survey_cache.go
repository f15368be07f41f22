package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// CacheStore adapts a Redis client to the application cache port. Values are
// opaque byte payloads; the caller owns serialization and key naming.
type CacheStore struct {
	rdb *redis.Client
}

// NewCacheStore builds the TTL key-value cache on an existing Redis client.
func NewCacheStore(rdb *redis.Client) *CacheStore {
	return &CacheStore{rdb: rdb}
}

// Get returns the cached payload and whether the key was present. A missing
// key is not an error.
func (s *CacheStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	payload, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return payload, true, nil
}

// Set stores the payload under key with the given TTL.
func (s *CacheStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return s.rdb.Set(ctx, key, value, ttl).Err()
}

// Delete removes the given keys. Missing keys are not an error.
func (s *CacheStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return s.rdb.Del(ctx, keys...).Err()
}
