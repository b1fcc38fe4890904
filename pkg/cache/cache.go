// Package cache is a thin JSON cache over Redis. A nil client turns every call
// into a miss or a no-op so callers work unchanged without Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Key prefixes.
const (
	PrefixBadges = "badges:"
)

// ErrMiss is returned by Get when the key is absent or Redis is not configured.
var ErrMiss = errors.New("cache miss")

// Cache stores JSON values with a TTL.
type Cache struct {
	client *redis.Client
}

// New wraps client. client may be nil.
func New(client *redis.Client) *Cache {
	return &Cache{client: client}
}

// NewClient builds a Redis client and checks it answers.
func NewClient(ctx context.Context, addr, password string, db, poolSize int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
		PoolSize: poolSize,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	return client, nil
}

// IsAvailable reports whether a client is configured.
func (c *Cache) IsAvailable() bool {
	return c != nil && c.client != nil
}

// Ping checks the connection.
func (c *Cache) Ping(ctx context.Context) error {
	if !c.IsAvailable() {
		return errors.New("redis client is nil")
	}
	return c.client.Ping(ctx).Err()
}

// Get decodes the value at key into dest.
func (c *Cache) Get(ctx context.Context, key string, dest any) error {
	if !c.IsAvailable() {
		return ErrMiss
	}
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrMiss
		}
		return fmt.Errorf("cache get %s: %w", key, err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("cache decode %s: %w", key, err)
	}
	return nil
}

// Set stores value at key for ttl.
func (c *Cache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if !c.IsAvailable() {
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache encode %s: %w", key, err)
	}
	return c.client.Set(ctx, key, data, ttl).Err()
}

// Delete removes keys.
func (c *Cache) Delete(ctx context.Context, keys ...string) error {
	if !c.IsAvailable() || len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}
