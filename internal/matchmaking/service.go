// Package matchmaking runs the arena queue: users join a per-mode queue,
// poll for completion, and are paired by a search that widens across
// modes and score tolerance as they wait. Polls that wait too long fall
// back to a ghost opponent so nobody leaves empty handed.
package matchmaking

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rotisserie/eris"

	"github.com/fitrate/arena/internal/adapters/kvstore"
	"github.com/fitrate/arena/internal/domain/cache"
	"github.com/fitrate/arena/internal/domain/model"
	"github.com/fitrate/arena/internal/domain/modes"
	"github.com/fitrate/arena/internal/domain/pseudonym"
	"github.com/fitrate/arena/internal/domain/scoring"
	"github.com/fitrate/arena/internal/ghostpool"
	"github.com/fitrate/arena/pkg/logger"
	"github.com/fitrate/arena/pkg/metrics"
)

const (
	defaultQueueTTL  = 90 * time.Second
	defaultGhostWait = 60 * time.Second

	// The daily match counter only backs the stats endpoint; it can
	// roll off shortly after its day ends.
	matchCounterTTL = 48 * time.Hour

	dateLayout    = "2006-01-02"
	statsCacheKey = "arena:stats"
)

// Battles creates and resolves match records.
type Battles interface {
	CreateMatch(ctx context.Context, mode string, challenger model.MatchSide) (string, error)
	ResolveMatch(ctx context.Context, battleID string, opponent model.MatchSide) error
	GetMatch(ctx context.Context, battleID string) (model.MatchRecord, error)
}

// Ghosts supplies stand-in opponents for long waits.
type Ghosts interface {
	Opponent(ctx context.Context, q ghostpool.OpponentQuery) (model.GhostEntry, error)
}

// Points awards leaderboard points for resolved matches.
type Points interface {
	RecordScore(ctx context.Context, userID string, points int64) (model.Standing, error)
}

// Ingest accepts snapshots for the ghost pool pipeline. Enqueue is
// non-blocking; false means the snapshot was dropped.
type Ingest interface {
	Enqueue(ctx context.Context, snap model.Snapshot) bool
}

// JoinResult is the outcome of a queue join. An immediate pairing
// returns the resolved match right away; a queued join reports where
// the caller landed and a coarse wait estimate.
type JoinResult struct {
	Status        string             `json:"status"`
	Position      int                `json:"position,omitempty"`
	EstimatedWait int                `json:"estimatedWait,omitempty"`
	Match         *model.MatchRecord `json:"match,omitempty"`
}

// PollResult is the outcome of a queue poll. A waiting poll reports
// how wide the search currently runs so callers can show progress.
type PollResult struct {
	Status      string             `json:"status"`
	WaitSeconds int                `json:"waitSeconds"`
	Tolerance   float64            `json:"tolerance,omitempty"`
	Scope       string             `json:"scope,omitempty"`
	Match       *model.MatchRecord `json:"match,omitempty"`
}

// Service owns the mode queues and the pairing search.
type Service struct {
	store     kvstore.Store
	battles   Battles
	ghosts    Ghosts
	points    Points
	ingest    Ingest
	clock     clockwork.Clock
	queueTTL  time.Duration
	ghostWait time.Duration
	stats     *cache.Cache
	log       logger.Logger
}

// New constructs a matchmaking service.
func New(store kvstore.Store, battles Battles, ghosts Ghosts, points Points, opts ...Option) *Service {
	s := &Service{
		store:     store,
		battles:   battles,
		ghosts:    ghosts,
		points:    points,
		clock:     clockwork.NewRealClock(),
		queueTTL:  defaultQueueTTL,
		ghostWait: defaultGhostWait,
		stats:     cache.New(),
		log:       logger.Get().Named("matchmaking"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Join enters userID into the mode queue. A user already queued is
// moved, not duplicated; their old entry is replaced wherever it was.
// When a compatible opponent is already waiting the pairing happens
// inline and the resolved match is returned immediately.
func (s *Service) Join(ctx context.Context, userID string, score float64, mode, thumbnail string) (JoinResult, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return JoinResult{}, ErrInvalidUser
	}
	if !scoring.ValidScore(score) {
		return JoinResult{}, ErrInvalidScore
	}
	if !modes.Valid(mode) {
		return JoinResult{}, ErrInvalidMode
	}

	now := s.clock.Now().UTC()
	rejoin := false
	prevMode, err := s.store.Get(ctx, kvstore.QueueUserKey(userID))
	switch {
	case err == nil:
		rejoin = true
		if err := s.store.HDel(ctx, kvstore.QueueKey(prevMode), userID); err != nil {
			return JoinResult{}, eris.Wrap(err, "replace queue entry")
		}
	case errors.Is(err, kvstore.ErrNotFound):
	default:
		return JoinResult{}, eris.Wrap(err, "check queue membership")
	}

	entry := model.QueueEntry{
		UserID:    userID,
		Score:     score,
		Thumbnail: thumbnail,
		Mode:      mode,
		JoinedAt:  now,
		Status:    model.StatusQueued,
	}
	if err := s.writeEntry(ctx, entry); err != nil {
		return JoinResult{}, err
	}
	// The index outlives the entry TTL so an expired entry still polls
	// through the cleanup path instead of vanishing silently.
	if err := s.store.Set(ctx, kvstore.QueueUserKey(userID), mode, 2*s.queueTTL); err != nil {
		return JoinResult{}, eris.Wrap(err, "index queue entry")
	}
	if !rejoin {
		if _, err := s.store.Incr(ctx, kvstore.OnlineKey()); err != nil {
			s.log.Warn(ctx, "online counter failed", logger.Error(err))
		}
	}
	metrics.RecordQueueJoin(mode)
	s.stats.Invalidate(statsCacheKey)

	if s.ingest != nil && thumbnail != "" {
		if !s.ingest.Enqueue(ctx, model.Snapshot{
			UserID:    userID,
			Score:     score,
			Thumbnail: thumbnail,
			Mode:      mode,
			TakenAt:   now,
		}) {
			s.log.Warn(ctx, "snapshot dropped", logger.String("userId", userID))
		}
	}

	record, matched, err := s.attemptMatch(ctx, entry)
	if err != nil {
		// Pairing trouble must not unseat a join that already landed.
		s.log.Warn(ctx, "inline pairing failed", logger.Error(err))
		return s.queuedResult(ctx, mode), nil
	}
	if matched {
		return JoinResult{Status: model.StatusMatched, Match: &record}, nil
	}
	return s.queuedResult(ctx, mode), nil
}

// queuedResult reports the caller's position in their mode queue and the
// wait estimate. Both are best-effort social-proof numbers.
func (s *Service) queuedResult(ctx context.Context, mode string) JoinResult {
	result := JoinResult{Status: model.StatusQueued, Position: 1, EstimatedWait: estimateWait(1)}
	if depth, err := s.store.HLen(ctx, kvstore.QueueKey(mode)); err == nil && depth > 0 {
		result.Position = int(depth)
		result.EstimatedWait = estimateWait(int(depth))
	}
	return result
}

// Poll reports the state of userID's queue entry. A matched entry is
// consumed by exactly the poll that observes it; subsequent polls see
// an empty queue and report expired.
func (s *Service) Poll(ctx context.Context, userID string) (PollResult, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return PollResult{}, ErrInvalidUser
	}

	mode, err := s.store.Get(ctx, kvstore.QueueUserKey(userID))
	if errors.Is(err, kvstore.ErrNotFound) {
		metrics.RecordPollResult(model.PollExpired)
		return PollResult{Status: model.PollExpired}, nil
	}
	if err != nil {
		return PollResult{}, eris.Wrap(err, "look up queue membership")
	}

	raw, err := s.store.HGet(ctx, kvstore.QueueKey(mode), userID)
	if errors.Is(err, kvstore.ErrNotFound) {
		_ = s.store.Del(ctx, kvstore.QueueUserKey(userID))
		metrics.RecordPollResult(model.PollExpired)
		return PollResult{Status: model.PollExpired}, nil
	}
	if err != nil {
		return PollResult{}, eris.Wrap(err, "load queue entry")
	}
	var entry model.QueueEntry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		s.evict(ctx, mode, userID)
		metrics.RecordPollResult(model.PollExpired)
		return PollResult{Status: model.PollExpired}, nil
	}

	now := s.clock.Now().UTC()
	wait := now.Sub(entry.JoinedAt)

	if entry.Status == model.StatusMatched {
		record, err := s.consume(ctx, entry)
		if err != nil {
			return PollResult{}, err
		}
		metrics.RecordPollResult(model.PollMatched)
		metrics.RecordMatchWaitSeconds(wait.Seconds())
		return PollResult{Status: model.PollMatched, WaitSeconds: int(wait.Seconds()), Match: &record}, nil
	}

	if wait > s.queueTTL {
		s.evict(ctx, mode, userID)
		metrics.RecordPollResult(model.PollExpired)
		return PollResult{Status: model.PollExpired, WaitSeconds: int(wait.Seconds())}, nil
	}

	record, matched, err := s.attemptMatch(ctx, entry)
	if err != nil {
		return PollResult{}, err
	}
	if matched {
		metrics.RecordPollResult(model.PollMatched)
		metrics.RecordMatchWaitSeconds(wait.Seconds())
		return PollResult{Status: model.PollMatched, WaitSeconds: int(wait.Seconds()), Match: &record}, nil
	}

	if wait >= s.ghostWait {
		record, err := s.ghostMatch(ctx, entry)
		if err != nil {
			return PollResult{}, err
		}
		metrics.RecordPollResult(model.PollMatched)
		metrics.RecordMatchWaitSeconds(wait.Seconds())
		return PollResult{Status: model.PollMatched, WaitSeconds: int(wait.Seconds()), Match: &record}, nil
	}

	metrics.RecordPollResult(model.PollWaiting)
	_, tolerance := searchPlan(entry.Mode, wait)
	return PollResult{
		Status:      model.PollWaiting,
		WaitSeconds: int(wait.Seconds()),
		Tolerance:   tolerance,
		Scope:       searchScope(wait),
	}, nil
}

// Leave removes userID from the queue. Leaving when not queued is a
// no-op.
func (s *Service) Leave(ctx context.Context, userID string) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return ErrInvalidUser
	}
	mode, err := s.store.Get(ctx, kvstore.QueueUserKey(userID))
	if errors.Is(err, kvstore.ErrNotFound) {
		return nil
	}
	if err != nil {
		return eris.Wrap(err, "look up queue membership")
	}
	s.evict(ctx, mode, userID)
	metrics.RecordQueueLeave()
	s.stats.Invalidate(statsCacheKey)
	return nil
}

// Stats returns the social-proof summary. Reads are cached briefly; the
// displayed online count never drops below one (the viewer counts).
func (s *Service) Stats(ctx context.Context) (model.QueueStats, error) {
	if cached, ok := s.stats.Get(statsCacheKey); ok {
		return cached.(model.QueueStats), nil
	}

	online, err := s.counter(ctx, kvstore.OnlineKey())
	if err != nil {
		return model.QueueStats{}, err
	}
	if online < 1 {
		online = 1
	}

	today := s.clock.Now().UTC().Format(dateLayout)
	matchesToday, err := s.counter(ctx, kvstore.MatchesKey(today))
	if err != nil {
		return model.QueueStats{}, err
	}

	depth := make(map[string]int, len(modes.All()))
	total := 0
	for _, m := range modes.All() {
		n, err := s.store.HLen(ctx, kvstore.QueueKey(m))
		if err != nil && !errors.Is(err, kvstore.ErrNotFound) {
			return model.QueueStats{}, eris.Wrap(err, "measure queue depth")
		}
		depth[m] = int(n)
		total += int(n)
		metrics.UpdateQueueDepth(m, int(n))
	}

	stats := model.QueueStats{
		Online:               int(online),
		MatchesToday:         matchesToday,
		EstimatedWaitSeconds: estimateWait(total),
		QueueDepth:           depth,
	}
	metrics.UpdateOnlineUsers(stats.Online)
	metrics.UpdateMatchesToday(int(matchesToday))
	s.stats.Set(statsCacheKey, stats)
	return stats, nil
}

// estimateWait is a coarse heuristic: fuller queues pair faster.
func estimateWait(depth int) int {
	switch {
	case depth >= 4:
		return 10
	case depth >= 1:
		return 20
	default:
		return 30
	}
}

// attemptMatch walks the queues the entry's wait currently admits, in
// search order, and pairs within the first queue that yields any
// compatible candidate; longest wait breaks ties inside that queue.
// On success the caller's entry is consumed and the candidate's entry
// is marked so its owner's next poll finds the match. Entries whose
// wait has outlived the queue TTL are evicted as the scan passes them.
func (s *Service) attemptMatch(ctx context.Context, entry model.QueueEntry) (model.MatchRecord, bool, error) {
	now := s.clock.Now().UTC()
	scan, tolerance := searchPlan(entry.Mode, now.Sub(entry.JoinedAt))

	var best model.QueueEntry
	found := false
	for _, m := range scan {
		candidates, err := s.store.HGetAll(ctx, kvstore.QueueKey(m))
		if err != nil && !errors.Is(err, kvstore.ErrNotFound) {
			return model.MatchRecord{}, false, eris.Wrap(err, "scan queue")
		}
		for id, raw := range candidates {
			if id == entry.UserID {
				continue
			}
			var c model.QueueEntry
			if err := json.Unmarshal([]byte(raw), &c); err != nil {
				s.evict(ctx, m, id)
				continue
			}
			if now.Sub(c.JoinedAt) > s.queueTTL {
				s.evict(ctx, m, c.UserID)
				continue
			}
			if c.Status != model.StatusQueued {
				continue
			}
			diff := c.Score - entry.Score
			if diff < 0 {
				diff = -diff
			}
			if diff > tolerance {
				continue
			}
			if !found || c.JoinedAt.Before(best.JoinedAt) ||
				(c.JoinedAt.Equal(best.JoinedAt) && c.UserID < best.UserID) {
				best = c
				found = true
			}
		}
		if found {
			break
		}
	}
	if !found {
		return model.MatchRecord{}, false, nil
	}

	battleID, err := s.battles.CreateMatch(ctx, entry.Mode, liveSide(entry))
	if err != nil {
		return model.MatchRecord{}, false, eris.Wrap(err, "create match")
	}
	if err := s.battles.ResolveMatch(ctx, battleID, liveSide(best)); err != nil {
		return model.MatchRecord{}, false, eris.Wrap(err, "resolve match")
	}

	best.Status = model.StatusMatched
	best.BattleID = battleID
	if err := s.writeEntry(ctx, best); err != nil {
		return model.MatchRecord{}, false, err
	}

	s.countMatch(ctx)
	metrics.RecordMatch("live")

	entry.BattleID = battleID
	record, err := s.consume(ctx, entry)
	if err != nil {
		return model.MatchRecord{}, false, err
	}
	return record, true, nil
}

// ghostMatch pairs the entry against the ghost pool. Ghost battles
// resolve immediately; the stand-in never polls.
func (s *Service) ghostMatch(ctx context.Context, entry model.QueueEntry) (model.MatchRecord, error) {
	ghost, err := s.ghosts.Opponent(ctx, ghostpool.OpponentQuery{
		TargetScore:   entry.Score,
		ExcludeUserID: entry.UserID,
		PreferMode:    entry.Mode,
	})
	if err != nil {
		return model.MatchRecord{}, eris.Wrap(err, "draw ghost opponent")
	}

	battleID, err := s.battles.CreateMatch(ctx, entry.Mode, liveSide(entry))
	if err != nil {
		return model.MatchRecord{}, eris.Wrap(err, "create ghost match")
	}
	if err := s.battles.ResolveMatch(ctx, battleID, ghostSide(ghost)); err != nil {
		return model.MatchRecord{}, eris.Wrap(err, "resolve ghost match")
	}

	s.countMatch(ctx)
	metrics.RecordMatch("ghost")

	entry.BattleID = battleID
	return s.consume(ctx, entry)
}

// consume reads the entry's match, removes the entry, and awards the
// owner their outcome points.
func (s *Service) consume(ctx context.Context, entry model.QueueEntry) (model.MatchRecord, error) {
	record, err := s.battles.GetMatch(ctx, entry.BattleID)
	if err != nil {
		return model.MatchRecord{}, eris.Wrap(err, "load match record")
	}
	s.evict(ctx, entry.Mode, entry.UserID)
	s.award(ctx, entry.UserID, record.Winner)
	return record, nil
}

func (s *Service) award(ctx context.Context, userID, winner string) {
	pts := scoring.OutcomePoints(winner, userID)
	if _, err := s.points.RecordScore(ctx, userID, pts); err != nil {
		s.log.Warn(ctx, "point award failed",
			logger.String("userId", userID), logger.Error(err))
	}
}

func (s *Service) writeEntry(ctx context.Context, entry model.QueueEntry) error {
	raw, err := json.Marshal(entry)
	if err != nil {
		return eris.Wrap(err, "marshal queue entry")
	}
	if err := s.store.HSet(ctx, kvstore.QueueKey(entry.Mode), entry.UserID, string(raw)); err != nil {
		return eris.Wrap(err, "write queue entry")
	}
	return nil
}

// evict removes an entry and its index and releases its online slot.
func (s *Service) evict(ctx context.Context, mode, userID string) {
	if err := s.store.HDel(ctx, kvstore.QueueKey(mode), userID); err != nil {
		s.log.Warn(ctx, "queue entry removal failed", logger.Error(err))
	}
	if err := s.store.Del(ctx, kvstore.QueueUserKey(userID)); err != nil {
		s.log.Warn(ctx, "queue index removal failed", logger.Error(err))
	}
	n, err := s.store.IncrBy(ctx, kvstore.OnlineKey(), -1)
	if err != nil {
		s.log.Warn(ctx, "online counter failed", logger.Error(err))
		return
	}
	if n < 0 {
		_ = s.store.Set(ctx, kvstore.OnlineKey(), "0", 0)
	}
}

func (s *Service) countMatch(ctx context.Context) {
	key := kvstore.MatchesKey(s.clock.Now().UTC().Format(dateLayout))
	if _, err := s.store.Incr(ctx, key); err != nil {
		s.log.Warn(ctx, "match counter failed", logger.Error(err))
		return
	}
	if err := s.store.Expire(ctx, key, matchCounterTTL); err != nil {
		s.log.Warn(ctx, "match counter expire failed", logger.Error(err))
	}
	s.stats.Invalidate(statsCacheKey)
}

func (s *Service) counter(ctx context.Context, key string) (int64, error) {
	raw, err := s.store.Get(ctx, key)
	if errors.Is(err, kvstore.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, eris.Wrap(err, "read counter")
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, eris.Wrap(err, "parse counter")
	}
	return n, nil
}

func liveSide(entry model.QueueEntry) model.MatchSide {
	return model.MatchSide{
		UserID:      entry.UserID,
		DisplayName: pseudonym.ForUser(entry.UserID),
		Score:       entry.Score,
		Thumbnail:   entry.Thumbnail,
	}
}

func ghostSide(ghost model.GhostEntry) model.MatchSide {
	userID := ghost.UserID
	if userID == "" {
		// Synthetic ghosts carry no user id; label the side by its
		// generated persona so winner attribution stays unambiguous.
		userID = "ghost:" + ghost.DisplayName
	}
	return model.MatchSide{
		UserID:      userID,
		DisplayName: ghost.DisplayName,
		Score:       ghost.Score,
		Thumbnail:   ghost.Thumbnail,
		Ghost:       true,
	}
}
