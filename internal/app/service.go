// Package service assembles the arena component graph and owns its
// lifecycle: the key-value store, the domain services, and the snapshot
// ingest pipeline that feeds the ghost pool.
package service

import (
	"context"
	"sync"
	"time"

	"github.com/fitrate/arena/internal/adapters/kvstore"
	snapqueue "github.com/fitrate/arena/internal/adapters/mq/queue"
	workerpool "github.com/fitrate/arena/internal/adapters/mq/worker"
	"github.com/fitrate/arena/internal/arena"
	"github.com/fitrate/arena/internal/battle"
	"github.com/fitrate/arena/internal/config"
	"github.com/fitrate/arena/internal/ghostpool"
	"github.com/fitrate/arena/internal/matchmaking"
	"github.com/fitrate/arena/internal/war"
	"github.com/fitrate/arena/pkg/logger"
)

const pingTimeout = 2 * time.Second

// Service implements the API dependencies for the arena backend.
type Service struct {
	mu sync.RWMutex

	cfg *config.Config

	// Core components
	store   kvstore.Store
	redis   *kvstore.RedisStore
	battles *battle.Service
	ghosts  *ghostpool.Service
	boards  *arena.Service
	wars    *war.Service
	match   *matchmaking.Service

	// Snapshot ingest pipeline
	ingest *snapqueue.InMemoryQueue
	pool   *workerpool.Pool

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithStore injects a prebuilt store and skips the Redis bootstrap.
// Tests use this to run the whole graph over the in-memory store.
func WithStore(store kvstore.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// New constructs an unstarted Service over cfg. A nil cfg gets defaults.
func New(cfg *config.Config, opts ...Option) *Service {
	if cfg == nil {
		cfg = config.New()
	}
	s := &Service{cfg: cfg}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting arena service...")

	if s.store == nil {
		s.redis = kvstore.NewRedis(kvstore.RedisConfig{
			Addr:     s.cfg.RedisAddr,
			Password: s.cfg.RedisPassword,
			DB:       s.cfg.RedisDB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		if err := s.redis.Ping(pingCtx); err != nil {
			s.logger.Warn(ctx, "redis unreachable; starting degraded on the in-memory fallback",
				logger.String("addr", s.cfg.RedisAddr),
				logger.Error(err),
			)
		}
		cancel()
		s.store = kvstore.NewFallback(s.redis, kvstore.NewMemory())
	}

	s.battles = battle.New(s.store)
	s.ghosts = ghostpool.New(s.store,
		ghostpool.WithPoolSize(s.cfg.GhostPoolSize),
		ghostpool.WithMaxAge(time.Duration(s.cfg.GhostMaxAgeHours)*time.Hour),
	)
	s.boards = arena.New(s.store,
		arena.WithMaxLimit(s.cfg.MaxLeaderboardLimit),
	)
	s.wars = war.New(s.store)

	s.ingest = snapqueue.NewInMemoryQueue(
		snapqueue.WithCapacity(s.cfg.IngestQueueSize),
		snapqueue.WithBufferSize(s.cfg.IngestQueueSize),
	)
	s.pool = workerpool.NewPool(s.cfg.IngestWorkers, s.ingest, s.ghosts)
	s.pool.Start(ctx)

	s.match = matchmaking.New(s.store, s.battles, s.ghosts, s.boards,
		matchmaking.WithQueueTTL(time.Duration(s.cfg.QueueTTLSeconds)*time.Second),
		matchmaking.WithGhostWait(time.Duration(s.cfg.GhostWaitSeconds)*time.Second),
		matchmaking.WithStatsTTL(time.Duration(s.cfg.StatsCacheSeconds)*time.Second),
		matchmaking.WithIngest(s.ingest),
	)

	s.started = true
	s.logger.Info(ctx, "arena service started",
		logger.Int("ingestWorkers", s.cfg.IngestWorkers),
		logger.Int("ingestQueueSize", s.cfg.IngestQueueSize),
		logger.Int("queueTTLSeconds", s.cfg.QueueTTLSeconds),
		logger.Int("ghostWaitSeconds", s.cfg.GhostWaitSeconds),
	)

	return nil
}

// Stop gracefully shuts down the service. The ingest queue is closed
// first so the workers drain whatever is buffered before exiting.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping arena service...")

	if s.pool != nil {
		shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		if err := s.pool.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn(ctx, "ingest pool shutdown incomplete", logger.Error(err))
		}
		cancel()
	}

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Warn(ctx, "redis close failed", logger.Error(err))
		}
	}

	s.started = false
	s.logger.Info(ctx, "arena service stopped")
}

// Matchmaking returns the queue service.
func (s *Service) Matchmaking() *matchmaking.Service {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.match
}

// Leaderboard returns the weekly leaderboard service.
func (s *Service) Leaderboard() *arena.Service {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.boards
}

// Wars returns the alliance war service.
func (s *Service) Wars() *war.Service {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.wars
}

// Ghosts returns the ghost pool service.
func (s *Service) Ghosts() *ghostpool.Service {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ghosts
}

// Battles returns the battle record service.
func (s *Service) Battles() *battle.Service {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.battles
}

// Store returns the backing key-value store.
func (s *Service) Store() kvstore.Store {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":        s.started,
		"ingest_workers": s.cfg.IngestWorkers,
	}

	if !s.started {
		return stats
	}

	ctx := context.Background()
	stats["ingest_depth"] = s.ingest.Len(ctx)
	stats["ingest_capacity"] = s.cfg.IngestQueueSize
	stats["war_id"] = s.wars.CurrentWarID()

	if size, err := s.ghosts.Size(ctx); err == nil {
		stats["ghost_pool_size"] = size
	}
	if s.redis != nil {
		healthy := s.redis.Ping(ctx) == nil
		stats["redis_healthy"] = healthy
	}

	return stats
}
