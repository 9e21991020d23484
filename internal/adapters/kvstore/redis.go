package kvstore

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"
)

// RedisStore implements Store on a Redis client. Driver errors are wrapped
// with eris; redis.Nil becomes ErrNotFound so callers branch on sentinels
// only.
type RedisStore struct {
	client *redis.Client
}

// RedisConfig carries connection parameters for NewRedis.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRedis constructs a Redis-backed store. The connection is lazy; use
// Ping to probe reachability.
func NewRedis(cfg RedisConfig) *RedisStore {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return &RedisStore{client: client}
}

// NewRedisFromClient wraps an existing client. Tests pass a miniredis-backed
// client here.
func NewRedisFromClient(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Close releases the underlying client.
func (s *RedisStore) Close() error {
	if err := s.client.Close(); err != nil {
		return eris.Wrap(err, "redis close")
	}
	return nil
}

func wrapRedis(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, redis.Nil) {
		return ErrNotFound
	}
	return eris.Wrapf(ErrUnavailable, "%s: %v", op, err)
}

// Get returns the string value at key.
func (s *RedisStore) Get(ctx context.Context, key string) (string, error) {
	v, err := s.client.Get(ctx, key).Result()
	if err != nil {
		return "", wrapRedis("redis get", err)
	}
	return v, nil
}

// Set writes value at key.
func (s *RedisStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return wrapRedis("redis set", s.client.Set(ctx, key, value, ttl).Err())
}

// SetNX writes value at key only if the key does not exist.
func (s *RedisStore) SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	ok, err := s.client.SetNX(ctx, key, value, ttl).Result()
	if err != nil {
		return false, wrapRedis("redis setnx", err)
	}
	return ok, nil
}

// Del removes keys.
func (s *RedisStore) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return wrapRedis("redis del", s.client.Del(ctx, keys...).Err())
}

// Incr atomically increments the integer at key by one.
func (s *RedisStore) Incr(ctx context.Context, key string) (int64, error) {
	n, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, wrapRedis("redis incr", err)
	}
	return n, nil
}

// IncrBy atomically adds delta to the integer at key.
func (s *RedisStore) IncrBy(ctx context.Context, key string, delta int64) (int64, error) {
	n, err := s.client.IncrBy(ctx, key, delta).Result()
	if err != nil {
		return 0, wrapRedis("redis incrby", err)
	}
	return n, nil
}

// Expire sets or refreshes the ttl of a key.
func (s *RedisStore) Expire(ctx context.Context, key string, ttl time.Duration) error {
	return wrapRedis("redis expire", s.client.Expire(ctx, key, ttl).Err())
}

// HSet writes a hash field.
func (s *RedisStore) HSet(ctx context.Context, key, field, value string) error {
	return wrapRedis("redis hset", s.client.HSet(ctx, key, field, value).Err())
}

// HGet returns a hash field value.
func (s *RedisStore) HGet(ctx context.Context, key, field string) (string, error) {
	v, err := s.client.HGet(ctx, key, field).Result()
	if err != nil {
		return "", wrapRedis("redis hget", err)
	}
	return v, nil
}

// HGetAll returns all hash fields. A missing key yields an empty map.
func (s *RedisStore) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	m, err := s.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, wrapRedis("redis hgetall", err)
	}
	return m, nil
}

// HDel removes hash fields.
func (s *RedisStore) HDel(ctx context.Context, key string, fields ...string) error {
	if len(fields) == 0 {
		return nil
	}
	return wrapRedis("redis hdel", s.client.HDel(ctx, key, fields...).Err())
}

// HLen returns the number of hash fields.
func (s *RedisStore) HLen(ctx context.Context, key string) (int64, error) {
	n, err := s.client.HLen(ctx, key).Result()
	if err != nil {
		return 0, wrapRedis("redis hlen", err)
	}
	return n, nil
}

// HIncrBy atomically adds delta to the integer hash field.
func (s *RedisStore) HIncrBy(ctx context.Context, key, field string, delta int64) (int64, error) {
	n, err := s.client.HIncrBy(ctx, key, field, delta).Result()
	if err != nil {
		return 0, wrapRedis("redis hincrby", err)
	}
	return n, nil
}

// HIncrByFloat atomically adds delta to the float hash field.
func (s *RedisStore) HIncrByFloat(ctx context.Context, key, field string, delta float64) (float64, error) {
	f, err := s.client.HIncrByFloat(ctx, key, field, delta).Result()
	if err != nil {
		return 0, wrapRedis("redis hincrbyfloat", err)
	}
	return f, nil
}

// ZIncrBy adds delta to a member's score.
func (s *RedisStore) ZIncrBy(ctx context.Context, key string, delta float64, member string) (float64, error) {
	f, err := s.client.ZIncrBy(ctx, key, delta, member).Result()
	if err != nil {
		return 0, wrapRedis("redis zincrby", err)
	}
	return f, nil
}

// ZRevRangeWithScores returns members with rank in [start, stop], best first.
func (s *RedisStore) ZRevRangeWithScores(ctx context.Context, key string, start, stop int64) ([]Member, error) {
	zs, err := s.client.ZRevRangeWithScores(ctx, key, start, stop).Result()
	if err != nil {
		return nil, wrapRedis("redis zrevrange", err)
	}
	out := make([]Member, 0, len(zs))
	for _, z := range zs {
		member, ok := z.Member.(string)
		if !ok {
			continue
		}
		out = append(out, Member{Member: member, Score: z.Score})
	}
	return out, nil
}

// ZRevRank returns the zero-based rank of member, best first.
func (s *RedisStore) ZRevRank(ctx context.Context, key, member string) (int64, error) {
	n, err := s.client.ZRevRank(ctx, key, member).Result()
	if err != nil {
		return 0, wrapRedis("redis zrevrank", err)
	}
	return n, nil
}

// ZScore returns a member's score.
func (s *RedisStore) ZScore(ctx context.Context, key, member string) (float64, error) {
	f, err := s.client.ZScore(ctx, key, member).Result()
	if err != nil {
		return 0, wrapRedis("redis zscore", err)
	}
	return f, nil
}

// ZRem removes members.
func (s *RedisStore) ZRem(ctx context.Context, key string, members ...string) error {
	if len(members) == 0 {
		return nil
	}
	args := make([]interface{}, len(members))
	for i, m := range members {
		args[i] = m
	}
	return wrapRedis("redis zrem", s.client.ZRem(ctx, key, args...).Err())
}

// ZCard returns the member count.
func (s *RedisStore) ZCard(ctx context.Context, key string) (int64, error) {
	n, err := s.client.ZCard(ctx, key).Result()
	if err != nil {
		return 0, wrapRedis("redis zcard", err)
	}
	return n, nil
}

// Ping probes the connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	return wrapRedis("redis ping", s.client.Ping(ctx).Err())
}
