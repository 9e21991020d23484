// Package ghostpool keeps a rolling window of recent real submissions and
// serves them as stand-in opponents. When the window is empty it
// synthesizes an opponent, so a caller is never left without one.
package ghostpool

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/fitrate/arena/internal/adapters/kvstore"
	"github.com/fitrate/arena/internal/domain/model"
	"github.com/fitrate/arena/internal/domain/pseudonym"
	"github.com/fitrate/arena/internal/domain/scoring"
	"github.com/fitrate/arena/pkg/logger"
	"github.com/fitrate/arena/pkg/metrics"
)

// Default pool limits.
const (
	defaultPoolSize = 200
	defaultMaxAge   = 24 * time.Hour
)

// Weighted-selection bonuses by score proximity and mode affinity.
const (
	baseWeight      = 100
	closeBonus      = 50 // |score - target| < 5
	nearBonus       = 30 // |score - target| < 10
	farBonus        = 10 // |score - target| < 20
	modeMatchBonus  = 20
	syntheticSpread = 15.0
	syntheticFloor  = 10.0
)

// OpponentQuery narrows ghost selection.
type OpponentQuery struct {
	TargetScore   float64
	ExcludeUserID string
	PreferMode    string
}

// Service owns the ghost pool hash in the key-value store.
type Service struct {
	store    kvstore.Store
	clock    clockwork.Clock
	poolSize int
	maxAge   time.Duration
	log      logger.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// New constructs a ghost pool service.
func New(store kvstore.Store, opts ...Option) *Service {
	s := &Service{
		store:    store,
		clock:    clockwork.NewRealClock(),
		poolSize: defaultPoolSize,
		maxAge:   defaultMaxAge,
		log:      logger.Get().Named("ghostpool"),
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())), //nolint:gosec // opponent variety, not security
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Add appends a snapshot to the pool, keyed by its thumbnail hash so a
// resubmitted outfit replaces its older self. Oldest entries are evicted
// once the pool exceeds its size cap.
func (s *Service) Add(ctx context.Context, snap model.Snapshot) error {
	if !scoring.ValidScore(snap.Score) || snap.Score <= 0 {
		return ErrInvalidSnapshot
	}
	if snap.Thumbnail == "" {
		return ErrInvalidSnapshot
	}

	addedAt := snap.TakenAt
	if addedAt.IsZero() {
		addedAt = s.clock.Now().UTC()
	}
	entry := model.GhostEntry{
		Hash:        thumbHash(snap.Thumbnail),
		UserID:      snap.UserID,
		Score:       snap.Score,
		Thumbnail:   snap.Thumbnail,
		Mode:        snap.Mode,
		DisplayName: pseudonym.ForUser(snap.UserID),
		AddedAt:     addedAt,
	}

	raw, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	if err := s.store.HSet(ctx, kvstore.GhostsKey(), entry.Hash, string(raw)); err != nil {
		return err
	}

	count, err := s.store.HLen(ctx, kvstore.GhostsKey())
	if err != nil {
		return err
	}
	if count > int64(s.poolSize) {
		if err := s.evictOldest(ctx, int(count)-s.poolSize); err != nil {
			return err
		}
		count = int64(s.poolSize)
	}
	metrics.UpdateGhostPoolSize(int(count))
	return nil
}

// Opponent returns a usable opponent for the query. Live entries within
// the age window are chosen by weighted random selection; with none
// available a synthetic opponent is generated. Never returns empty.
func (s *Service) Opponent(ctx context.Context, q OpponentQuery) (model.GhostEntry, error) {
	candidates, err := s.liveEntries(ctx, q.ExcludeUserID)
	if err != nil {
		// Selection must stay total: degrade to a synthetic ghost
		// rather than surfacing a store error.
		s.log.Warn(ctx, "ghost pool read failed, synthesizing",
			logger.Error(err),
		)
		candidates = nil
	}
	if len(candidates) == 0 {
		metrics.RecordGhostSynthesized()
		return s.synthesize(q.TargetScore), nil
	}

	weights := make([]int, len(candidates))
	total := 0
	for i, c := range candidates {
		weights[i] = selectionWeight(c, q)
		total += weights[i]
	}

	s.mu.Lock()
	pick := s.rng.Intn(total)
	s.mu.Unlock()
	for i, w := range weights {
		pick -= w
		if pick < 0 {
			metrics.RecordGhostServed()
			return candidates[i], nil
		}
	}
	// Unreachable while weights are positive; keep the totality guarantee.
	metrics.RecordGhostServed()
	return candidates[len(candidates)-1], nil
}

// Trim evicts entries older than the age window. Selection already skips
// them; this reclaims the space on a schedule.
func (s *Service) Trim(ctx context.Context) error {
	all, err := s.store.HGetAll(ctx, kvstore.GhostsKey())
	if err != nil {
		return err
	}
	cutoff := s.clock.Now().Add(-s.maxAge)
	var stale []string
	live := 0
	for hash, raw := range all {
		var entry model.GhostEntry
		if err := json.Unmarshal([]byte(raw), &entry); err != nil {
			stale = append(stale, hash)
			continue
		}
		if entry.AddedAt.Before(cutoff) {
			stale = append(stale, hash)
			continue
		}
		live++
	}
	if len(stale) > 0 {
		if err := s.store.HDel(ctx, kvstore.GhostsKey(), stale...); err != nil {
			return err
		}
		s.log.Debug(ctx, "trimmed ghost pool",
			logger.Int("evicted", len(stale)),
			logger.Int("remaining", live),
		)
	}
	metrics.UpdateGhostPoolSize(live)
	return nil
}

// Size returns the current pool entry count.
func (s *Service) Size(ctx context.Context) (int64, error) {
	return s.store.HLen(ctx, kvstore.GhostsKey())
}

func (s *Service) liveEntries(ctx context.Context, excludeUserID string) ([]model.GhostEntry, error) {
	all, err := s.store.HGetAll(ctx, kvstore.GhostsKey())
	if err != nil {
		return nil, err
	}
	cutoff := s.clock.Now().Add(-s.maxAge)
	entries := make([]model.GhostEntry, 0, len(all))
	for _, raw := range all {
		var entry model.GhostEntry
		if err := json.Unmarshal([]byte(raw), &entry); err != nil {
			continue // malformed entries never wedge selection
		}
		if entry.AddedAt.Before(cutoff) {
			continue
		}
		if excludeUserID != "" && entry.UserID == excludeUserID {
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (s *Service) evictOldest(ctx context.Context, n int) error {
	all, err := s.store.HGetAll(ctx, kvstore.GhostsKey())
	if err != nil {
		return err
	}
	type aged struct {
		hash    string
		addedAt time.Time
	}
	entries := make([]aged, 0, len(all))
	for hash, raw := range all {
		var entry model.GhostEntry
		if err := json.Unmarshal([]byte(raw), &entry); err != nil {
			// Malformed entries are the oldest of all.
			entries = append(entries, aged{hash: hash})
			continue
		}
		entries = append(entries, aged{hash: hash, addedAt: entry.AddedAt})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].addedAt.Before(entries[j].addedAt)
	})
	if n > len(entries) {
		n = len(entries)
	}
	victims := make([]string, 0, n)
	for _, e := range entries[:n] {
		victims = append(victims, e.hash)
	}
	return s.store.HDel(ctx, kvstore.GhostsKey(), victims...)
}

func (s *Service) synthesize(targetScore float64) model.GhostEntry {
	s.mu.Lock()
	offset := s.rng.Float64()*2*syntheticSpread - syntheticSpread
	seed := s.rng.Int63()
	s.mu.Unlock()

	score := scoring.Round1(targetScore + offset)
	if score < syntheticFloor {
		score = syntheticFloor
	}
	if score > scoring.MaxScore {
		score = scoring.MaxScore
	}
	return model.GhostEntry{
		Score:       score,
		DisplayName: pseudonym.ForUser(fmt.Sprintf("ghost-%d", seed)),
		AddedAt:     s.clock.Now().UTC(),
		Synthetic:   true,
	}
}

func selectionWeight(entry model.GhostEntry, q OpponentQuery) int {
	diff := entry.Score - q.TargetScore
	if diff < 0 {
		diff = -diff
	}
	weight := baseWeight
	switch {
	case diff < 5:
		weight += closeBonus
	case diff < 10:
		weight += nearBonus
	case diff < 20:
		weight += farBonus
	}
	if q.PreferMode != "" && entry.Mode == q.PreferMode {
		weight += modeMatchBonus
	}
	return weight
}

func thumbHash(thumbnail string) string {
	h := fnv.New64a()
	_, _ = h.Write([]byte(thumbnail))
	return fmt.Sprintf("%016x", h.Sum64())
}
