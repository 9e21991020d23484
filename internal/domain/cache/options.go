// Package cache provides a small mutex-guarded TTL value cache.
package cache

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// Option applies a configuration option to the Cache.
type Option func(*Cache)

// WithTTL sets the freshness window shared by all entries.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithClock injects a clock for deterministic expiry in tests.
func WithClock(clock clockwork.Clock) Option {
	return func(c *Cache) {
		if clock != nil {
			c.clock = clock
		}
	}
}
