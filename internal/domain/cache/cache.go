// Package cache provides a small mutex-guarded TTL value cache. It backs
// the short caching windows on read-heavy endpoints (queue stats, war
// standings) so those reads do not hammer the store.
package cache

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Cache stores values with a single shared ttl. Expiry is lazy: stale
// entries are dropped on the read that finds them.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration
	clock   clockwork.Clock
}

type entry struct {
	value    any
	deadline time.Time
}

// New creates a cache with configuration options.
func New(opts ...Option) *Cache {
	c := &Cache{
		entries: make(map[string]entry),
		ttl:     5 * time.Second, // default window
		clock:   clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached value for key and whether it is still fresh.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if c.clock.Now().After(e.deadline) {
		c.mu.Lock()
		// Re-check under the write lock; a Set may have raced in.
		if cur, ok := c.entries[key]; ok && c.clock.Now().After(cur.deadline) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return nil, false
	}
	return e.value, true
}

// Set stores value under key for the cache's ttl.
func (c *Cache) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{value: value, deadline: c.clock.Now().Add(c.ttl)}
}

// Invalidate drops a key immediately.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Size returns the number of entries, fresh or not.
func (c *Cache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
