package kvstore

import "github.com/jonboulle/clockwork"

// Option applies a configuration option to the MemoryStore.
type Option func(*MemoryStore)

// WithClock injects a clock for TTL checks. Tests pass a fake clock to
// drive expiry deterministically.
func WithClock(clock clockwork.Clock) Option {
	return func(s *MemoryStore) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithSeed seeds the treap priority generator for reproducible layouts.
func WithSeed(seed int64) Option {
	return func(s *MemoryStore) {
		s.rng.Seed(seed)
	}
}
