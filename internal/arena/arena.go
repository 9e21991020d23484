// Package arena ranks users by cumulative points within an ISO week and
// classifies them into tiers. Rank is always recomputed from the sorted
// set at query time, never stored, so concurrent increments can never
// leave a stale rank behind.
package arena

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/fitrate/arena/internal/adapters/kvstore"
	"github.com/fitrate/arena/internal/domain/model"
	"github.com/fitrate/arena/internal/domain/pseudonym"
	"github.com/fitrate/arena/pkg/logger"
	"github.com/fitrate/arena/pkg/metrics"
)

// Profiles are kept for about a year; the leaderboard itself rolls
// weekly.
const (
	profileTTL         = 365 * 24 * time.Hour
	maxDisplayNameLen  = 32
	defaultMaxLimit    = 100
	defaultWeeklyLimit = 10
)

// Leaderboard is the weekly ranking view.
type Leaderboard struct {
	WeekKey string                 `json:"weekKey"`
	Rows    []model.LeaderboardRow `json:"rows"`
	You     *model.LeaderboardRow  `json:"you,omitempty"`
}

// Service owns the weekly sorted set and the profile records.
type Service struct {
	store    kvstore.Store
	clock    clockwork.Clock
	maxLimit int
	log      logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithClock injects a clock for deterministic week boundaries in tests.
func WithClock(clock clockwork.Clock) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithMaxLimit caps the leaderboard page size.
func WithMaxLimit(limit int) Option {
	return func(s *Service) {
		if limit > 0 {
			s.maxLimit = limit
		}
	}
}

// New constructs a leaderboard service.
func New(store kvstore.Store, opts ...Option) *Service {
	s := &Service{
		store:    store,
		clock:    clockwork.NewRealClock(),
		maxLimit: defaultMaxLimit,
		log:      logger.Get().Named("arena"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RecordScore adds points to the user's weekly total and returns the new
// total and 1-based rank. Point magnitude is the caller's responsibility;
// only positivity is enforced here.
func (s *Service) RecordScore(ctx context.Context, userID string, points int64) (model.Standing, error) {
	if strings.TrimSpace(userID) == "" {
		return model.Standing{}, ErrInvalidUser
	}
	if points <= 0 {
		return model.Standing{}, ErrInvalidPoints
	}

	now := s.clock.Now()
	key := kvstore.LeaderboardKey(WeekKey(now))
	total, err := s.store.ZIncrBy(ctx, key, float64(points), userID)
	if err != nil {
		metrics.RecordLeaderboardError()
		return model.Standing{}, err
	}
	// Refresh retention on every write; the key must outlive its week by
	// the retention window.
	if err := s.store.Expire(ctx, key, retentionTTL(now)); err != nil {
		s.log.Warn(ctx, "leaderboard retention refresh failed", logger.Error(err))
	}

	rank, err := s.store.ZRevRank(ctx, key, userID)
	if err != nil {
		metrics.RecordLeaderboardError()
		return model.Standing{}, err
	}
	metrics.RecordLeaderboardUpdate()
	return model.Standing{
		UserID: userID,
		Points: int64(total),
		Rank:   int(rank) + 1,
	}, nil
}

// Weekly returns the top-limit rows of the current week, annotated with
// display names and tiers. When userID is set and ranked outside the top
// rows, their own standing is attached separately.
func (s *Service) Weekly(ctx context.Context, userID string, limit int) (Leaderboard, error) {
	if limit == 0 {
		limit = defaultWeeklyLimit
	}
	if limit < 1 || limit > s.maxLimit {
		return Leaderboard{}, ErrInvalidLimit
	}

	weekKey := WeekKey(s.clock.Now())
	key := kvstore.LeaderboardKey(weekKey)
	members, err := s.store.ZRevRangeWithScores(ctx, key, 0, int64(limit)-1)
	if err != nil {
		return Leaderboard{}, err
	}

	board := Leaderboard{WeekKey: weekKey, Rows: make([]model.LeaderboardRow, 0, len(members))}
	seenSelf := false
	for i, m := range members {
		row := s.row(ctx, m.Member, int64(m.Score), i+1)
		if m.Member == userID {
			row.You = true
			seenSelf = true
		}
		board.Rows = append(board.Rows, row)
	}

	if userID != "" && !seenSelf {
		rank, err := s.store.ZRevRank(ctx, key, userID)
		if err == nil {
			score, scoreErr := s.store.ZScore(ctx, key, userID)
			if scoreErr == nil {
				row := s.row(ctx, userID, int64(score), int(rank)+1)
				row.You = true
				board.You = &row
			}
		}
		// ErrNotFound just means the user has no points this week.
	}
	return board, nil
}

// SetProfile stores a display name for a user.
func (s *Service) SetProfile(ctx context.Context, userID, displayName string) (model.Profile, error) {
	if strings.TrimSpace(userID) == "" {
		return model.Profile{}, ErrInvalidUser
	}
	displayName = strings.TrimSpace(displayName)
	if displayName == "" || len(displayName) > maxDisplayNameLen {
		return model.Profile{}, ErrInvalidProfile
	}

	profile := model.Profile{
		UserID:      userID,
		DisplayName: displayName,
		UpdatedAt:   s.clock.Now().UTC(),
	}
	raw, err := json.Marshal(profile)
	if err != nil {
		return model.Profile{}, err
	}
	if err := s.store.Set(ctx, kvstore.ProfileKey(userID), string(raw), profileTTL); err != nil {
		return model.Profile{}, err
	}
	return profile, nil
}

// Profile returns the stored profile, or a pseudonymous one when the
// user never set a name.
func (s *Service) Profile(ctx context.Context, userID string) (model.Profile, error) {
	if strings.TrimSpace(userID) == "" {
		return model.Profile{}, ErrInvalidUser
	}
	raw, err := s.store.Get(ctx, kvstore.ProfileKey(userID))
	if err != nil {
		if errors.Is(err, kvstore.ErrNotFound) {
			return model.Profile{UserID: userID, DisplayName: pseudonym.ForUser(userID)}, nil
		}
		return model.Profile{}, err
	}
	var profile model.Profile
	if err := json.Unmarshal([]byte(raw), &profile); err != nil {
		return model.Profile{}, err
	}
	return profile, nil
}

// displayName resolves the name shown on the leaderboard: explicit
// profile name first, deterministic pseudonym otherwise.
func (s *Service) displayName(ctx context.Context, userID string) string {
	raw, err := s.store.Get(ctx, kvstore.ProfileKey(userID))
	if err == nil {
		var profile model.Profile
		if json.Unmarshal([]byte(raw), &profile) == nil && profile.DisplayName != "" {
			return profile.DisplayName
		}
	}
	return pseudonym.ForUser(userID)
}

func (s *Service) row(ctx context.Context, userID string, points int64, rank int) model.LeaderboardRow {
	return model.LeaderboardRow{
		Rank:        rank,
		UserID:      userID,
		Points:      points,
		DisplayName: s.displayName(ctx, userID),
		Tier:        TierFor(points),
	}
}
