package ghostpool

import (
	"math/rand"
	"time"

	"github.com/jonboulle/clockwork"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithPoolSize caps the number of replayable entries.
func WithPoolSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.poolSize = size
		}
	}
}

// WithMaxAge excludes entries older than age from selection.
func WithMaxAge(age time.Duration) Option {
	return func(s *Service) {
		if age > 0 {
			s.maxAge = age
		}
	}
}

// WithClock injects a clock for deterministic age checks in tests.
func WithClock(clock clockwork.Clock) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithSeed makes weighted selection and synthesis reproducible.
func WithSeed(seed int64) Option {
	return func(s *Service) {
		s.rng = rand.New(rand.NewSource(seed)) //nolint:gosec // reproducible tests
	}
}
