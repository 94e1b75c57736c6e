// Package cache keeps downloaded image bytes in memory with a TTL.
package cache

import (
	"context"
	"sync"
	"time"
)

type item struct {
	data       []byte
	expiration int64
}

// Cache is a TTL keyed byte cache.
type Cache struct {
	items map[string]item
	mu    sync.RWMutex
	ttl   time.Duration
	now   func() time.Time
}

// New creates a cache whose entries expire after defaultTTL.
func New(defaultTTL time.Duration) *Cache {
	return &Cache{
		items: make(map[string]item),
		ttl:   defaultTTL,
		now:   time.Now,
	}
}

// Set stores data under key. An explicit ttl overrides the default.
func (c *Cache) Set(key string, data []byte, ttl ...time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	duration := c.ttl
	if len(ttl) > 0 {
		duration = ttl[0]
	}

	c.items[key] = item{
		data:       data,
		expiration: c.now().Add(duration).UnixNano(),
	}
}

// Get returns the bytes stored under key unless they expired.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	it, found := c.items[key]
	if !found || c.now().UnixNano() > it.expiration {
		return nil, false
	}
	return it.data, true
}

// Clear removes every entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]item)
}

// Size returns the number of entries, expired ones included.
func (c *Cache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// RunJanitor drops expired entries every interval until ctx is done.
func (c *Cache) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.removeExpired()
		}
	}
}

func (c *Cache) removeExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now().UnixNano()
	for key, it := range c.items {
		if now > it.expiration {
			delete(c.items, key)
		}
	}
}
