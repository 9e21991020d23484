package kvstore

import (
	"context"
	"errors"
	"time"

	"github.com/fitrate/arena/pkg/logger"
	"github.com/fitrate/arena/pkg/metrics"
)

// FallbackStore degrades from a primary store to an in-process memory
// store per operation. Availability is traded for durability: state
// written during an outage lives only in this process, and the next call
// tries the primary again (no stickiness).
type FallbackStore struct {
	primary Store
	memory  *MemoryStore
	log     logger.Logger
}

// NewFallback wraps primary with a memory fallback.
func NewFallback(primary Store, memory *MemoryStore) *FallbackStore {
	return &FallbackStore{
		primary: primary,
		memory:  memory,
		log:     logger.Get().Named("kvstore"),
	}
}

// degraded reports whether err means the primary could not serve the
// call. Outage errors carry ErrUnavailable; sentinel results (absent
// key, type mismatch) are answers, not outages.
func degraded(err error) bool {
	return errors.Is(err, ErrUnavailable)
}

func (s *FallbackStore) fellBack(ctx context.Context, op string, err error) {
	metrics.RecordStoreFallback(op)
	s.log.Warn(ctx, "store call degraded to memory",
		logger.String("op", op),
		logger.Error(err),
	)
}

// Get returns the string value at key.
func (s *FallbackStore) Get(ctx context.Context, key string) (string, error) {
	v, err := s.primary.Get(ctx, key)
	if degraded(err) {
		s.fellBack(ctx, "get", err)
		return s.memory.Get(ctx, key)
	}
	return v, err
}

// Set writes value at key.
func (s *FallbackStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	err := s.primary.Set(ctx, key, value, ttl)
	if degraded(err) {
		s.fellBack(ctx, "set", err)
		return s.memory.Set(ctx, key, value, ttl)
	}
	return err
}

// SetNX writes value at key only if the key does not exist.
func (s *FallbackStore) SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	ok, err := s.primary.SetNX(ctx, key, value, ttl)
	if degraded(err) {
		s.fellBack(ctx, "setnx", err)
		return s.memory.SetNX(ctx, key, value, ttl)
	}
	return ok, err
}

// Del removes keys.
func (s *FallbackStore) Del(ctx context.Context, keys ...string) error {
	err := s.primary.Del(ctx, keys...)
	if degraded(err) {
		s.fellBack(ctx, "del", err)
		return s.memory.Del(ctx, keys...)
	}
	return err
}

// Incr atomically increments the integer at key by one.
func (s *FallbackStore) Incr(ctx context.Context, key string) (int64, error) {
	n, err := s.primary.Incr(ctx, key)
	if degraded(err) {
		s.fellBack(ctx, "incr", err)
		return s.memory.Incr(ctx, key)
	}
	return n, err
}

// IncrBy atomically adds delta to the integer at key.
func (s *FallbackStore) IncrBy(ctx context.Context, key string, delta int64) (int64, error) {
	n, err := s.primary.IncrBy(ctx, key, delta)
	if degraded(err) {
		s.fellBack(ctx, "incrby", err)
		return s.memory.IncrBy(ctx, key, delta)
	}
	return n, err
}

// Expire sets or refreshes the ttl of a key.
func (s *FallbackStore) Expire(ctx context.Context, key string, ttl time.Duration) error {
	err := s.primary.Expire(ctx, key, ttl)
	if degraded(err) {
		s.fellBack(ctx, "expire", err)
		return s.memory.Expire(ctx, key, ttl)
	}
	return err
}

// HSet writes a hash field.
func (s *FallbackStore) HSet(ctx context.Context, key, field, value string) error {
	err := s.primary.HSet(ctx, key, field, value)
	if degraded(err) {
		s.fellBack(ctx, "hset", err)
		return s.memory.HSet(ctx, key, field, value)
	}
	return err
}

// HGet returns a hash field value.
func (s *FallbackStore) HGet(ctx context.Context, key, field string) (string, error) {
	v, err := s.primary.HGet(ctx, key, field)
	if degraded(err) {
		s.fellBack(ctx, "hget", err)
		return s.memory.HGet(ctx, key, field)
	}
	return v, err
}

// HGetAll returns all hash fields.
func (s *FallbackStore) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	m, err := s.primary.HGetAll(ctx, key)
	if degraded(err) {
		s.fellBack(ctx, "hgetall", err)
		return s.memory.HGetAll(ctx, key)
	}
	return m, err
}

// HDel removes hash fields.
func (s *FallbackStore) HDel(ctx context.Context, key string, fields ...string) error {
	err := s.primary.HDel(ctx, key, fields...)
	if degraded(err) {
		s.fellBack(ctx, "hdel", err)
		return s.memory.HDel(ctx, key, fields...)
	}
	return err
}

// HLen returns the number of hash fields.
func (s *FallbackStore) HLen(ctx context.Context, key string) (int64, error) {
	n, err := s.primary.HLen(ctx, key)
	if degraded(err) {
		s.fellBack(ctx, "hlen", err)
		return s.memory.HLen(ctx, key)
	}
	return n, err
}

// HIncrBy atomically adds delta to the integer hash field.
func (s *FallbackStore) HIncrBy(ctx context.Context, key, field string, delta int64) (int64, error) {
	n, err := s.primary.HIncrBy(ctx, key, field, delta)
	if degraded(err) {
		s.fellBack(ctx, "hincrby", err)
		return s.memory.HIncrBy(ctx, key, field, delta)
	}
	return n, err
}

// HIncrByFloat atomically adds delta to the float hash field.
func (s *FallbackStore) HIncrByFloat(ctx context.Context, key, field string, delta float64) (float64, error) {
	f, err := s.primary.HIncrByFloat(ctx, key, field, delta)
	if degraded(err) {
		s.fellBack(ctx, "hincrbyfloat", err)
		return s.memory.HIncrByFloat(ctx, key, field, delta)
	}
	return f, err
}

// ZIncrBy adds delta to a member's score.
func (s *FallbackStore) ZIncrBy(ctx context.Context, key string, delta float64, member string) (float64, error) {
	f, err := s.primary.ZIncrBy(ctx, key, delta, member)
	if degraded(err) {
		s.fellBack(ctx, "zincrby", err)
		return s.memory.ZIncrBy(ctx, key, delta, member)
	}
	return f, err
}

// ZRevRangeWithScores returns members with rank in [start, stop], best first.
func (s *FallbackStore) ZRevRangeWithScores(ctx context.Context, key string, start, stop int64) ([]Member, error) {
	ms, err := s.primary.ZRevRangeWithScores(ctx, key, start, stop)
	if degraded(err) {
		s.fellBack(ctx, "zrevrange", err)
		return s.memory.ZRevRangeWithScores(ctx, key, start, stop)
	}
	return ms, err
}

// ZRevRank returns the zero-based rank of member, best first.
func (s *FallbackStore) ZRevRank(ctx context.Context, key, member string) (int64, error) {
	n, err := s.primary.ZRevRank(ctx, key, member)
	if degraded(err) {
		s.fellBack(ctx, "zrevrank", err)
		return s.memory.ZRevRank(ctx, key, member)
	}
	return n, err
}

// ZScore returns a member's score.
func (s *FallbackStore) ZScore(ctx context.Context, key, member string) (float64, error) {
	f, err := s.primary.ZScore(ctx, key, member)
	if degraded(err) {
		s.fellBack(ctx, "zscore", err)
		return s.memory.ZScore(ctx, key, member)
	}
	return f, err
}

// ZRem removes members.
func (s *FallbackStore) ZRem(ctx context.Context, key string, members ...string) error {
	err := s.primary.ZRem(ctx, key, members...)
	if degraded(err) {
		s.fellBack(ctx, "zrem", err)
		return s.memory.ZRem(ctx, key, members...)
	}
	return err
}

// ZCard returns the member count.
func (s *FallbackStore) ZCard(ctx context.Context, key string) (int64, error) {
	n, err := s.primary.ZCard(ctx, key)
	if degraded(err) {
		s.fellBack(ctx, "zcard", err)
		return s.memory.ZCard(ctx, key)
	}
	return n, err
}

// Ping probes the primary only; the memory half is always reachable.
func (s *FallbackStore) Ping(ctx context.Context) error {
	return s.primary.Ping(ctx)
}
