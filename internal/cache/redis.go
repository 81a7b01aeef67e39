// Package cache manages the Redis connection shared by the rate limiter and
// the readiness probe.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Options tunes the Redis connection pool.
type Options struct {
	PoolSize        int
	MinIdleConns    int
	PoolTimeout     time.Duration
	ConnMaxIdleTime time.Duration
}

// DefaultOptions returns pool settings suited to a single API instance.
func DefaultOptions() Options {
	return Options{
		PoolSize:        10,
		MinIdleConns:    2,
		PoolTimeout:     4 * time.Second,
		ConnMaxIdleTime: 5 * time.Minute,
	}
}

// Cache wraps a Redis client.
type Cache struct {
	client *redis.Client
}

// New parses redisURL, applies opts and verifies the connection.
func New(ctx context.Context, redisURL string, opts Options) (*Cache, error) {
	parsed, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	applyOptions(parsed, opts)

	client := redis.NewClient(parsed)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return &Cache{client: client}, nil
}

// applyOptions copies the non-zero fields of opts onto parsed.
func applyOptions(parsed *redis.Options, opts Options) {
	if opts.PoolSize > 0 {
		parsed.PoolSize = opts.PoolSize
	}
	if opts.MinIdleConns > 0 {
		parsed.MinIdleConns = opts.MinIdleConns
	}
	if opts.PoolTimeout > 0 {
		parsed.PoolTimeout = opts.PoolTimeout
	}
	if opts.ConnMaxIdleTime > 0 {
		parsed.ConnMaxIdleTime = opts.ConnMaxIdleTime
	}
}

// Ping checks Redis connectivity.
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis client. The context is accepted so Close can be
// registered as a server shutdown hook.
func (c *Cache) Close(ctx context.Context) error {
	return c.client.Close()
}

// Client returns the underlying Redis client for the rate limiter.
func (c *Cache) Client() *redis.Client {
	return c.client
}
