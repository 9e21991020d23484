// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults; Load layers file/env on top.
// - All loading functions accept context.Context as the first parameter.
// - External errors must be wrapped via this package's error helpers.
package config

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// RedisAddr is the host:port of the key-value store. When the store is
	// unreachable the service degrades to the in-memory fallback.
	RedisAddr string `koanf:"redis_addr"`

	// RedisPassword authenticates against the key-value store if set.
	RedisPassword string `koanf:"redis_password"`

	// RedisDB selects the logical database index.
	RedisDB int `koanf:"redis_db"`

	// QueueTTLSeconds bounds how long a queue entry may wait before it is
	// reported expired on the next poll.
	QueueTTLSeconds int `koanf:"queue_ttl_seconds"`

	// GhostWaitSeconds is the wait after which a poll with no live candidate
	// is paired against a ghost opponent.
	GhostWaitSeconds int `koanf:"ghost_wait_seconds"`

	// StatsCacheSeconds bounds how long queue stats are served from cache.
	StatsCacheSeconds int `koanf:"stats_cache_seconds"`

	// GhostPoolSize caps the number of replayable ghost entries.
	GhostPoolSize int `koanf:"ghost_pool_size"`

	// GhostMaxAgeHours excludes older pool entries from selection.
	GhostMaxAgeHours int `koanf:"ghost_max_age_hours"`

	// MaxLeaderboardLimit caps GET /arena/leaderboard?limit.
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit"`

	// IngestWorkers sets the number of snapshot ingest workers.
	IngestWorkers int `koanf:"ingest_workers"`

	// IngestQueueSize bounds the in-memory snapshot queue.
	IngestQueueSize int `koanf:"ingest_queue_size"`
}

// New creates a Config populated with defaults. Load layers the optional
// YAML file and environment on top of these.
func New() *Config {
	c := &Config{
		LogLevel:            "info",
		Addr:                ":9080",
		RedisAddr:           "localhost:6379",
		RedisPassword:       "",
		RedisDB:             0,
		QueueTTLSeconds:     90,
		GhostWaitSeconds:    60,
		StatsCacheSeconds:   5,
		GhostPoolSize:       200,
		GhostMaxAgeHours:    24,
		MaxLeaderboardLimit: 100,
		IngestWorkers:       4,
		IngestQueueSize:     1024,
	}
	return c
}
