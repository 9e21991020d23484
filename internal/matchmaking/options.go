package matchmaking

import (
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/fitrate/arena/internal/domain/cache"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithClock injects a clock for deterministic waits in tests.
func WithClock(clock clockwork.Clock) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
			s.stats = cache.New(cache.WithClock(clock))
		}
	}
}

// WithQueueTTL bounds how long an entry may wait before it expires.
func WithQueueTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.queueTTL = ttl
		}
	}
}

// WithGhostWait sets the wait after which a poll falls back to a ghost
// opponent.
func WithGhostWait(wait time.Duration) Option {
	return func(s *Service) {
		if wait > 0 {
			s.ghostWait = wait
		}
	}
}

// WithIngest attaches the snapshot pipeline fed on every join that
// carries a thumbnail.
func WithIngest(ingest Ingest) Option {
	return func(s *Service) {
		s.ingest = ingest
	}
}

// WithStatsTTL bounds how long queue stats are served from cache.
func WithStatsTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			opts := []cache.Option{cache.WithTTL(ttl)}
			if s.clock != nil {
				opts = append(opts, cache.WithClock(s.clock))
			}
			s.stats = cache.New(opts...)
		}
	}
}
