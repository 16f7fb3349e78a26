package cache

import (
	"context"
	"strings"
	"sync"
	"time"

	portssvc "github.com/BizPilotApp/bizpilot_backend/internal/core/ports/services"
)

type entry struct {
	value     string
	expiresAt time.Time
}

// TTLCache is an in-process string cache with per-entry expiry. It backs the
// reporting layer; entries are small serialized rollups, so no eviction
// beyond expiry is needed.
type TTLCache struct {
	mu      sync.RWMutex
	entries map[string]entry
	now     func() time.Time
	stop    chan struct{}
}

var _ portssvc.CacheSvc = (*TTLCache)(nil)

// NewTTLCache creates a TTLCache and starts its janitor, which drops expired
// entries every cleanupInterval. Call Close to stop the janitor.
func NewTTLCache(cleanupInterval time.Duration) *TTLCache {
	c := &TTLCache{
		entries: make(map[string]entry),
		now:     time.Now,
		stop:    make(chan struct{}),
	}
	if cleanupInterval > 0 {
		go c.janitor(cleanupInterval)
	}
	return c
}

// Get returns the cached value if present and not expired.
func (c *TTLCache) Get(_ context.Context, key string) (string, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || c.now().After(e.expiresAt) {
		return "", false
	}
	return e.value, true
}

// Set stores a value for ttl. A non-positive ttl stores nothing.
func (c *TTLCache) Set(_ context.Context, key string, value string, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	c.mu.Lock()
	c.entries[key] = entry{value: value, expiresAt: c.now().Add(ttl)}
	c.mu.Unlock()
}

// ClearPattern drops every entry whose key matches the pattern. Only the
// trailing-star form ("reports:*") is supported; a pattern without a star is
// an exact delete.
func (c *TTLCache) ClearPattern(_ context.Context, pattern string) {
	prefix, wildcard := strings.CutSuffix(pattern, "*")

	c.mu.Lock()
	defer c.mu.Unlock()
	if !wildcard {
		delete(c.entries, pattern)
		return
	}
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
		}
	}
}

// Len reports the number of stored entries, expired ones included.
func (c *TTLCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Close stops the janitor goroutine.
func (c *TTLCache) Close() {
	close(c.stop)
}

func (c *TTLCache) janitor(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			now := c.now()
			c.mu.Lock()
			for key, e := range c.entries {
				if now.After(e.expiresAt) {
					delete(c.entries, key)
				}
			}
			c.mu.Unlock()
		}
	}
}
