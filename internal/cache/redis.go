// Package cache provides the optional Redis read-through cache.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultBranchTTL is used when no positive TTL is configured.
const DefaultBranchTTL = 5 * time.Minute

// Cache provides Redis cache access methods.
type Cache struct {
	client    *redis.Client
	branchTTL time.Duration
}

// New creates a new Cache with a Redis client.
func New(ctx context.Context, redisURL string, branchTTL time.Duration) (*Cache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	// Connection pool settings
	opt.PoolSize = 10
	opt.MinIdleConns = 2
	opt.PoolTimeout = 4 * time.Second
	opt.ConnMaxIdleTime = 5 * time.Minute

	client := redis.NewClient(opt)

	// Verify connection
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return NewWithClient(client, branchTTL), nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client *redis.Client, branchTTL time.Duration) *Cache {
	if branchTTL <= 0 {
		branchTTL = DefaultBranchTTL
	}
	return &Cache{client: client, branchTTL: branchTTL}
}

// Ping checks Redis connectivity.
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis client.
func (c *Cache) Close() error {
	return c.client.Close()
}
