package cache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const memoryBackend = "memory"

// MemoryCache is a size-bounded in-process LRU with a single TTL.
type MemoryCache struct {
	lru *expirable.LRU[string, []byte]
}

// NewMemoryCache creates an LRU holding at most size entries for ttl each.
func NewMemoryCache(size int, ttl time.Duration) *MemoryCache {
	if size <= 0 {
		size = DefaultConfig().Size
	}
	if ttl <= 0 {
		ttl = DefaultConfig().TTL
	}
	return &MemoryCache{lru: expirable.NewLRU[string, []byte](size, nil, ttl)}
}

// Get returns a copy of the cached value.
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := c.lru.Get(key)
	if !ok {
		cacheMisses.WithLabelValues(memoryBackend).Inc()
		return nil, ErrCacheMiss
	}
	cacheHits.WithLabelValues(memoryBackend).Inc()
	return append([]byte(nil), v...), nil
}

// Set stores value. The per-call ttl is ignored; the LRU has one TTL.
func (c *MemoryCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.lru.Add(key, append([]byte(nil), value...))
	return nil
}

// Len returns the number of live entries.
func (c *MemoryCache) Len() int {
	return c.lru.Len()
}

// Close purges the cache.
func (c *MemoryCache) Close() error {
	c.lru.Purge()
	return nil
}
