// Package cache holds the Redis-backed cache for the best-rated
// ranking, the one read-heavy query whose result is shared across all
// users. The cache is a pure optimization: every method on a nil
// *BestRatedCache is a no-op, so the service runs unchanged without
// Redis.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Riiturii/oc-monvieuxgrimoire/internal/domain"
)

const bestRatedKey = "books:bestrated"

// BestRatedCache caches the best-rated book list in Redis.
type BestRatedCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewBestRatedCache creates a cache with the given TTL. Returns nil if
// client is nil so callers can wire it unconditionally.
func NewBestRatedCache(client *redis.Client, ttl time.Duration) *BestRatedCache {
	if client == nil {
		return nil
	}
	return &BestRatedCache{client: client, ttl: ttl}
}

// Get returns the cached list, or (nil, nil) on a miss.
func (c *BestRatedCache) Get(ctx context.Context) ([]domain.Book, error) {
	if c == nil {
		return nil, nil
	}

	data, err := c.client.Get(ctx, bestRatedKey).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("redis get best rated: %w", err)
	}

	var books []domain.Book
	if err := json.Unmarshal(data, &books); err != nil {
		return nil, fmt.Errorf("unmarshal best rated: %w", err)
	}

	return books, nil
}

// Set stores the list with the configured TTL.
func (c *BestRatedCache) Set(ctx context.Context, books []domain.Book) error {
	if c == nil {
		return nil
	}

	data, err := json.Marshal(books)
	if err != nil {
		return fmt.Errorf("marshal best rated: %w", err)
	}

	if err := c.client.Set(ctx, bestRatedKey, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set best rated: %w", err)
	}

	return nil
}

// Invalidate drops the cached list. Called after any mutation that can
// change the ranking.
func (c *BestRatedCache) Invalidate(ctx context.Context) error {
	if c == nil {
		return nil
	}

	if err := c.client.Del(ctx, bestRatedKey).Err(); err != nil {
		return fmt.Errorf("redis del best rated: %w", err)
	}

	return nil
}
