package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultCacheTTL is how long live results are reused.
const DefaultCacheTTL = 5 * time.Minute

// Cache stores ranked live results by key.
type Cache interface {
	// Get returns the cached items and whether the key was present.
	Get(ctx context.Context, key string) ([]Item, bool, error)

	// Set stores items under key for ttl.
	Set(ctx context.Context, key string, items []Item, ttl time.Duration) error
}

type cacheEntry struct {
	items     []Item
	expiresAt time.Time
}

// InMemoryCache is a process-local Cache with lazy expiry.
type InMemoryCache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	now     func() time.Time
}

// NewInMemoryCache creates an empty in-memory cache.
func NewInMemoryCache() *InMemoryCache {
	return &InMemoryCache{
		entries: make(map[string]cacheEntry),
		now:     time.Now,
	}
}

// Get returns a copy of unexpired items.
func (c *InMemoryCache) Get(ctx context.Context, key string) ([]Item, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !c.now().Before(e.expiresAt) {
		delete(c.entries, key)
		return nil, false, nil
	}
	return append([]Item(nil), e.items...), true, nil
}

// Set stores a copy of items.
func (c *InMemoryCache) Set(ctx context.Context, key string, items []Item, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = cacheEntry{
		items:     append([]Item(nil), items...),
		expiresAt: c.now().Add(ttl),
	}
	return nil
}

// RedisCache stores live results in Redis as JSON.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache creates a Redis-backed cache.
func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

// Get reads and decodes the cached items.
func (c *RedisCache) Get(ctx context.Context, key string) ([]Item, bool, error) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}

	var items []Item
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, false, fmt.Errorf("decode cached items: %w", err)
	}
	return items, true, nil
}

// Set encodes items and stores them with ttl.
func (c *RedisCache) Set(ctx context.Context, key string, items []Item, ttl time.Duration) error {
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode items: %w", err)
	}
	if err := c.client.Set(ctx, key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}
