package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

const branchKeyPrefix = "sucursal:nombre:"

// ErrCacheMiss is returned when a key is not cached.
var ErrCacheMiss = errors.New("cache miss")

func branchKey(branchID int64) string {
	return branchKeyPrefix + strconv.FormatInt(branchID, 10)
}

// GetBranchName returns the cached display name of a branch.
// Returns ErrCacheMiss if not found.
func (c *Cache) GetBranchName(ctx context.Context, branchID int64) (string, error) {
	name, err := c.client.Get(ctx, branchKey(branchID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrCacheMiss
		}
		return "", fmt.Errorf("redis get failed: %w", err)
	}
	return name, nil
}

// SetBranchName caches the display name of a branch.
func (c *Cache) SetBranchName(ctx context.Context, branchID int64, name string) error {
	if err := c.client.Set(ctx, branchKey(branchID), name, c.branchTTL).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}
