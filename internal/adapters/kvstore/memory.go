package kvstore

import (
	"context"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// MemoryStore is the in-process Store used as the dev backend and as the
// degraded half of the fallback store. State is per-process: running more
// than one instance on it silently loses global consistency.
type MemoryStore struct {
	mu      sync.RWMutex
	strings map[string]*stringEntry
	hashes  map[string]*hashEntry
	zsets   map[string]*zsetEntry

	clock clockwork.Clock
	rng   *rand.Rand
}

type stringEntry struct {
	value    string
	deadline time.Time
}

type hashEntry struct {
	fields   map[string]string
	deadline time.Time
}

type zsetEntry struct {
	root     *treapNode
	scores   map[string]float64
	deadline time.Time
}

// NewMemory constructs an empty memory store.
func NewMemory(opts ...Option) *MemoryStore {
	s := &MemoryStore{
		strings: make(map[string]*stringEntry),
		hashes:  make(map[string]*hashEntry),
		zsets:   make(map[string]*zsetEntry),
		clock:   clockwork.NewRealClock(),
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())), //nolint:gosec // treap balancing, not security
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// expired is the single TTL predicate. Expiry is lazy: checked on access,
// never swept in the background.
func expired(now, deadline time.Time) bool {
	return !deadline.IsZero() && !now.Before(deadline)
}

func (s *MemoryStore) deadline(ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return s.clock.Now().Add(ttl)
}

// stringAt returns the live string entry at key, dropping it if expired.
// Caller must hold the write lock.
func (s *MemoryStore) stringAt(key string) *stringEntry {
	e, ok := s.strings[key]
	if !ok {
		return nil
	}
	if expired(s.clock.Now(), e.deadline) {
		delete(s.strings, key)
		return nil
	}
	return e
}

func (s *MemoryStore) hashAt(key string) *hashEntry {
	e, ok := s.hashes[key]
	if !ok {
		return nil
	}
	if expired(s.clock.Now(), e.deadline) {
		delete(s.hashes, key)
		return nil
	}
	return e
}

func (s *MemoryStore) zsetAt(key string) *zsetEntry {
	e, ok := s.zsets[key]
	if !ok {
		return nil
	}
	if expired(s.clock.Now(), e.deadline) {
		delete(s.zsets, key)
		return nil
	}
	return e
}

// Get returns the string value at key.
func (s *MemoryStore) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.stringAt(key)
	if e == nil {
		return "", ErrNotFound
	}
	return e.value, nil
}

// Set writes value at key.
func (s *MemoryStore) Set(_ context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.strings[key] = &stringEntry{value: value, deadline: s.deadline(ttl)}
	return nil
}

// SetNX writes value at key only if the key does not exist.
func (s *MemoryStore) SetNX(_ context.Context, key, value string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stringAt(key) != nil {
		return false, nil
	}
	s.strings[key] = &stringEntry{value: value, deadline: s.deadline(ttl)}
	return true, nil
}

// Del removes keys of any type.
func (s *MemoryStore) Del(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		delete(s.strings, key)
		delete(s.hashes, key)
		delete(s.zsets, key)
	}
	return nil
}

// Incr atomically increments the integer at key by one.
func (s *MemoryStore) Incr(ctx context.Context, key string) (int64, error) {
	return s.IncrBy(ctx, key, 1)
}

// IncrBy atomically adds delta to the integer at key.
func (s *MemoryStore) IncrBy(_ context.Context, key string, delta int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.stringAt(key)
	current := int64(0)
	deadline := time.Time{}
	if e != nil {
		n, err := strconv.ParseInt(e.value, 10, 64)
		if err != nil {
			return 0, ErrNotInteger
		}
		current = n
		deadline = e.deadline
	}
	current += delta
	s.strings[key] = &stringEntry{value: strconv.FormatInt(current, 10), deadline: deadline}
	return current, nil
}

// Expire sets or refreshes the ttl of a key. Missing keys are a no-op,
// matching the underlying store's semantics.
func (s *MemoryStore) Expire(_ context.Context, key string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	deadline := s.deadline(ttl)
	if e := s.stringAt(key); e != nil {
		e.deadline = deadline
	}
	if e := s.hashAt(key); e != nil {
		e.deadline = deadline
	}
	if e := s.zsetAt(key); e != nil {
		e.deadline = deadline
	}
	return nil
}

// HSet writes a hash field.
func (s *MemoryStore) HSet(_ context.Context, key, field, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.hashAt(key)
	if e == nil {
		e = &hashEntry{fields: make(map[string]string)}
		s.hashes[key] = e
	}
	e.fields[field] = value
	return nil
}

// HGet returns a hash field value.
func (s *MemoryStore) HGet(_ context.Context, key, field string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.hashAt(key)
	if e == nil {
		return "", ErrNotFound
	}
	v, ok := e.fields[field]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

// HGetAll returns a copy of all hash fields. A missing key yields an
// empty map, not an error.
func (s *MemoryStore) HGetAll(_ context.Context, key string) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]string)
	e := s.hashAt(key)
	if e == nil {
		return out, nil
	}
	for f, v := range e.fields {
		out[f] = v
	}
	return out, nil
}

// HDel removes hash fields.
func (s *MemoryStore) HDel(_ context.Context, key string, fields ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.hashAt(key)
	if e == nil {
		return nil
	}
	for _, f := range fields {
		delete(e.fields, f)
	}
	if len(e.fields) == 0 {
		delete(s.hashes, key)
	}
	return nil
}

// HLen returns the number of hash fields.
func (s *MemoryStore) HLen(_ context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.hashAt(key)
	if e == nil {
		return 0, nil
	}
	return int64(len(e.fields)), nil
}

// HIncrBy atomically adds delta to the integer hash field.
func (s *MemoryStore) HIncrBy(_ context.Context, key, field string, delta int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.hashAt(key)
	if e == nil {
		e = &hashEntry{fields: make(map[string]string)}
		s.hashes[key] = e
	}
	current := int64(0)
	if v, ok := e.fields[field]; ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, ErrNotInteger
		}
		current = n
	}
	current += delta
	e.fields[field] = strconv.FormatInt(current, 10)
	return current, nil
}

// HIncrByFloat atomically adds delta to the float hash field.
func (s *MemoryStore) HIncrByFloat(_ context.Context, key, field string, delta float64) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.hashAt(key)
	if e == nil {
		e = &hashEntry{fields: make(map[string]string)}
		s.hashes[key] = e
	}
	current := float64(0)
	if v, ok := e.fields[field]; ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, ErrNotInteger
		}
		current = f
	}
	current += delta
	e.fields[field] = strconv.FormatFloat(current, 'f', -1, 64)
	return current, nil
}

// ZIncrBy adds delta to a member's score, inserting it at zero first.
func (s *MemoryStore) ZIncrBy(_ context.Context, key string, delta float64, member string) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.zsetAt(key)
	if e == nil {
		e = &zsetEntry{scores: make(map[string]float64)}
		s.zsets[key] = e
	}
	score, ok := e.scores[member]
	if ok {
		e.root = treapDelete(e.root, member, score)
	}
	score += delta
	e.scores[member] = score
	e.root = treapInsert(e.root, member, score, s.rng.Uint64())
	return score, nil
}

// ZRevRangeWithScores returns members with rank in [start, stop], best
// first. Negative stop counts from the end, as in ZREVRANGE.
func (s *MemoryStore) ZRevRangeWithScores(_ context.Context, key string, start, stop int64) ([]Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.zsetAt(key)
	if e == nil {
		return nil, nil
	}
	n := int64(len(e.scores))
	if stop < 0 {
		stop = n + stop
	}
	if start < 0 {
		start = n + start
	}
	if start < 0 {
		start = 0
	}
	if start >= n || stop < start {
		return nil, nil
	}
	out := make([]Member, 0, stop-start+1)
	treapRange(e.root, int(start), int(stop), &out)
	return out, nil
}

// ZRevRank returns the zero-based rank of member, best first.
func (s *MemoryStore) ZRevRank(_ context.Context, key, member string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.zsetAt(key)
	if e == nil {
		return 0, ErrNotFound
	}
	score, ok := e.scores[member]
	if !ok {
		return 0, ErrNotFound
	}
	rank := treapRank(e.root, member, score)
	if rank < 0 {
		return 0, ErrNotFound
	}
	return int64(rank), nil
}

// ZScore returns a member's score.
func (s *MemoryStore) ZScore(_ context.Context, key, member string) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.zsetAt(key)
	if e == nil {
		return 0, ErrNotFound
	}
	score, ok := e.scores[member]
	if !ok {
		return 0, ErrNotFound
	}
	return score, nil
}

// ZRem removes members.
func (s *MemoryStore) ZRem(_ context.Context, key string, members ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.zsetAt(key)
	if e == nil {
		return nil
	}
	for _, m := range members {
		if score, ok := e.scores[m]; ok {
			e.root = treapDelete(e.root, m, score)
			delete(e.scores, m)
		}
	}
	if len(e.scores) == 0 {
		delete(s.zsets, key)
	}
	return nil
}

// ZCard returns the member count.
func (s *MemoryStore) ZCard(_ context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.zsetAt(key)
	if e == nil {
		return 0, nil
	}
	return int64(len(e.scores)), nil
}

// Ping always succeeds; the memory store is the process itself.
func (s *MemoryStore) Ping(_ context.Context) error {
	return nil
}
