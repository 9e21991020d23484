// Package kvstore defines the key-value store contract shared by every
// stateful component, plus its Redis, in-memory, and fallback
// implementations.
//
// Per-key operations are the unit of atomicity. There are no multi-key
// transactions; callers that need cross-key sequences must tolerate
// interleaving (the matchmaking poll path does, via its idempotent
// already-matched check).
package kvstore

import (
	"context"
	"time"
)

// Member is one scored member of a sorted set.
type Member struct {
	Member string
	Score  float64
}

// Store provides read/write access to shared state. Implementations must
// return ErrNotFound for absent keys, fields, and members.
type Store interface {
	// Get returns the string value at key.
	Get(ctx context.Context, key string) (string, error)
	// Set writes value at key. A zero ttl means no expiry.
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	// SetNX writes value at key only if the key does not exist.
	// Returns true if the value was written.
	SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	// Del removes keys. Missing keys are ignored.
	Del(ctx context.Context, keys ...string) error

	// Incr atomically increments the integer at key by one.
	Incr(ctx context.Context, key string) (int64, error)
	// IncrBy atomically adds delta to the integer at key.
	IncrBy(ctx context.Context, key string, delta int64) (int64, error)
	// Expire sets or refreshes the ttl of an existing key.
	Expire(ctx context.Context, key string, ttl time.Duration) error

	// Hash operations.
	HSet(ctx context.Context, key, field, value string) error
	HGet(ctx context.Context, key, field string) (string, error)
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HDel(ctx context.Context, key string, fields ...string) error
	HLen(ctx context.Context, key string) (int64, error)
	HIncrBy(ctx context.Context, key, field string, delta int64) (int64, error)
	HIncrByFloat(ctx context.Context, key, field string, delta float64) (float64, error)

	// Sorted-set operations. Ordering is score desc, member asc.
	ZIncrBy(ctx context.Context, key string, delta float64, member string) (float64, error)
	ZRevRangeWithScores(ctx context.Context, key string, start, stop int64) ([]Member, error)
	ZRevRank(ctx context.Context, key, member string) (int64, error)
	ZScore(ctx context.Context, key, member string) (float64, error)
	ZRem(ctx context.Context, key string, members ...string) error
	ZCard(ctx context.Context, key string) (int64, error)

	// Ping reports whether the store is reachable.
	Ping(ctx context.Context) error
}
