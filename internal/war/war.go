package war

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rotisserie/eris"

	"github.com/fitrate/arena/internal/adapters/kvstore"
	"github.com/fitrate/arena/internal/domain/cache"
	"github.com/fitrate/arena/internal/domain/model"
	"github.com/fitrate/arena/internal/domain/modes"
	"github.com/fitrate/arena/internal/domain/scoring"
	"github.com/fitrate/arena/pkg/logger"
	"github.com/fitrate/arena/pkg/metrics"
)

const (
	// Season keys outlive the war itself so final standings stay
	// queryable for a while after it ends.
	seasonRetention = 30 * 24 * time.Hour
	// Per-user daily counters only need to survive the day they track.
	userDayTTL = 48 * time.Hour

	dateLayout        = "2006-01-02"
	standingsCacheKey = "war:standings"
)

// Contribution is the receipt returned for one accepted scan.
type Contribution struct {
	UserID      string  `json:"userId"`
	AllianceID  string  `json:"allianceId"`
	Scan        int64   `json:"scan"`
	Weight      float64 `json:"weight"`
	Points      float64 `json:"points"`
	DailyPoints float64 `json:"dailyPoints"`
}

// Service owns alliance memberships, daily contribution tallies, and
// the battle schedule of the current war.
type Service struct {
	store     kvstore.Store
	clock     clockwork.Clock
	standings *cache.Cache
	log       logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithClock injects a clock for deterministic war and day boundaries
// in tests.
func WithClock(clock clockwork.Clock) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
			s.standings = cache.New(cache.WithClock(clock))
		}
	}
}

// New constructs a war service.
func New(store kvstore.Store, opts ...Option) *Service {
	s := &Service{
		store:     store,
		clock:     clockwork.NewRealClock(),
		standings: cache.New(),
		log:       logger.Get().Named("war"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CurrentWarID returns the id of the running season.
func (s *Service) CurrentWarID() int64 {
	return WarID(s.clock.Now())
}

// Join enrolls userID in allianceID for the current war. Membership is
// exclusive and permanent for the season: a second join returns the
// existing membership alongside ErrAlreadyJoined, whichever alliance it
// names.
func (s *Service) Join(ctx context.Context, userID, allianceID string) (model.Membership, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return model.Membership{}, ErrInvalidUser
	}
	if !ValidAlliance(allianceID) {
		return model.Membership{}, ErrInvalidAlliance
	}

	now := s.clock.Now().UTC()
	warID := WarID(now)
	membership := model.Membership{
		UserID:     userID,
		AllianceID: allianceID,
		WarID:      warID,
		JoinedAt:   now,
	}
	raw, err := json.Marshal(membership)
	if err != nil {
		return model.Membership{}, eris.Wrap(err, "marshal membership")
	}

	ttl := warEnd(warID).Sub(now) + seasonRetention
	ok, err := s.store.SetNX(ctx, kvstore.WarMemberKey(warID, userID), string(raw), ttl)
	if err != nil {
		return model.Membership{}, eris.Wrap(err, "write membership")
	}
	if !ok {
		existing, err := s.Membership(ctx, userID)
		if err != nil {
			return model.Membership{}, eris.Wrap(err, "load existing membership")
		}
		return existing, ErrAlreadyJoined
	}

	if _, err := s.store.Incr(ctx, kvstore.WarSizeKey(warID, allianceID)); err != nil {
		s.log.Warn(ctx, "alliance size counter failed", logger.Error(err))
	} else if err := s.store.Expire(ctx, kvstore.WarSizeKey(warID, allianceID), ttl); err != nil {
		s.log.Warn(ctx, "alliance size expire failed", logger.Error(err))
	}

	metrics.RecordWarJoin(allianceID)
	s.standings.Invalidate(standingsCacheKey)
	s.log.Info(ctx, "alliance joined",
		logger.String("userId", userID),
		logger.String("alliance", allianceID),
		logger.Int64("warId", warID))
	return membership, nil
}

// Membership returns userID's enrollment in the current war, or
// ErrNotMember when there is none.
func (s *Service) Membership(ctx context.Context, userID string) (model.Membership, error) {
	warID := WarID(s.clock.Now())
	raw, err := s.store.Get(ctx, kvstore.WarMemberKey(warID, userID))
	if errors.Is(err, kvstore.ErrNotFound) {
		return model.Membership{}, ErrNotMember
	}
	if err != nil {
		return model.Membership{}, eris.Wrap(err, "load membership")
	}
	var m model.Membership
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return model.Membership{}, eris.Wrap(err, "decode membership")
	}
	return m, nil
}

// Contribute credits one scan to the user's alliance. The raw score is
// weighted by the user's scan count for the day, so grinding yields
// diminishing returns. The scan counter increments even when the weight
// has bottomed out.
func (s *Service) Contribute(ctx context.Context, userID, allianceID string, rawScore float64, mode string) (Contribution, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return Contribution{}, ErrInvalidUser
	}
	if !ValidAlliance(allianceID) {
		return Contribution{}, ErrInvalidAlliance
	}
	if !scoring.ValidScore(rawScore) {
		return Contribution{}, ErrInvalidScore
	}
	if mode != "" && !modes.Valid(mode) {
		return Contribution{}, ErrInvalidMode
	}

	member, err := s.Membership(ctx, userID)
	if err != nil {
		return Contribution{}, err
	}
	if member.AllianceID != allianceID {
		return Contribution{}, ErrWrongAlliance
	}

	now := s.clock.Now().UTC()
	warID := WarID(now)
	date := now.Format(dateLayout)

	userDayKey := kvstore.WarUserDayKey(warID, date, userID)
	scan, err := s.store.HIncrBy(ctx, userDayKey, "scans", 1)
	if err != nil {
		return Contribution{}, eris.Wrap(err, "count scan")
	}
	if err := s.store.Expire(ctx, userDayKey, userDayTTL); err != nil {
		s.log.Warn(ctx, "user day expire failed", logger.Error(err))
	}

	weight := scoring.DiminishedWeight(scan)
	points := scoring.Round1(scoring.Contribution(rawScore, scan))

	daily, err := s.store.HIncrByFloat(ctx, userDayKey, "points", points)
	if err != nil {
		return Contribution{}, eris.Wrap(err, "tally user points")
	}

	ttl := warEnd(warID).Sub(now) + seasonRetention
	dayKey := kvstore.WarDayKey(warID, date)
	if _, err := s.store.ZIncrBy(ctx, dayKey, points, allianceID); err != nil {
		return Contribution{}, eris.Wrap(err, "tally day score")
	}
	if err := s.store.Expire(ctx, dayKey, ttl); err != nil {
		s.log.Warn(ctx, "day score expire failed", logger.Error(err))
	}
	if _, err := s.store.ZIncrBy(ctx, kvstore.WarTotalKey(warID), points, allianceID); err != nil {
		return Contribution{}, eris.Wrap(err, "tally season score")
	}
	if err := s.store.Expire(ctx, kvstore.WarTotalKey(warID), ttl); err != nil {
		s.log.Warn(ctx, "season score expire failed", logger.Error(err))
	}

	metrics.RecordWarContribution(allianceID, points)
	s.standings.Invalidate(standingsCacheKey)
	return Contribution{
		UserID:      userID,
		AllianceID:  allianceID,
		Scan:        scan,
		Weight:      weight,
		Points:      points,
		DailyPoints: daily,
	}, nil
}

// DailyProgress reports the user's scan count and accrued weighted
// points for the current war day. A user with no scans today gets
// zeroes, member or not.
func (s *Service) DailyProgress(ctx context.Context, userID string) (model.DailyContribution, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return model.DailyContribution{}, ErrInvalidUser
	}
	now := s.clock.Now().UTC()
	key := kvstore.WarUserDayKey(WarID(now), now.Format(dateLayout), userID)
	fields, err := s.store.HGetAll(ctx, key)
	if errors.Is(err, kvstore.ErrNotFound) {
		return model.DailyContribution{}, nil
	}
	if err != nil {
		return model.DailyContribution{}, eris.Wrap(err, "load daily progress")
	}
	var progress model.DailyContribution
	if v, ok := fields["scans"]; ok {
		progress.Scans, _ = strconv.ParseInt(v, 10, 64)
	}
	if v, ok := fields["points"]; ok {
		progress.Points, _ = strconv.ParseFloat(v, 64)
	}
	return progress, nil
}

// TodayBattles returns the three pairings scheduled for today with
// their live scores. Winners stay empty until the day is finalized.
func (s *Service) TodayBattles(ctx context.Context) ([]model.AllianceBattle, error) {
	now := s.clock.Now().UTC()
	return s.battlesFor(ctx, WarID(now), now)
}

func (s *Service) battlesFor(ctx context.Context, warID int64, day time.Time) ([]model.AllianceBattle, error) {
	dayKey := kvstore.WarDayKey(warID, day.Format(dateLayout))
	battles := make([]model.AllianceBattle, 0, 3)
	for _, pair := range pairingsFor(day) {
		home, err := s.allianceScore(ctx, dayKey, pair[0])
		if err != nil {
			return nil, err
		}
		away, err := s.allianceScore(ctx, dayKey, pair[1])
		if err != nil {
			return nil, err
		}
		battles = append(battles, model.AllianceBattle{
			Home:      pair[0],
			Away:      pair[1],
			HomeScore: home,
			AwayScore: away,
		})
	}
	return battles, nil
}

func (s *Service) allianceScore(ctx context.Context, dayKey, allianceID string) (float64, error) {
	score, err := s.store.ZScore(ctx, dayKey, allianceID)
	if errors.Is(err, kvstore.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, eris.Wrap(err, "load alliance score")
	}
	return score, nil
}

// FinalizeDailyBattles settles the battles of date (a "2006-01-02" UTC
// day), decides winners, and credits wins to the season tally. The
// results record is written with SetNX, so concurrent or repeated runs
// settle the day exactly once; later calls return the stored record.
func (s *Service) FinalizeDailyBattles(ctx context.Context, date string) (model.DayResults, error) {
	day, err := time.ParseInLocation(dateLayout, date, time.UTC)
	if err != nil {
		return model.DayResults{}, eris.Wrap(err, "parse date")
	}
	warID := WarID(day)

	battles, err := s.battlesFor(ctx, warID, day)
	if err != nil {
		return model.DayResults{}, err
	}
	for i := range battles {
		switch {
		case battles[i].HomeScore > battles[i].AwayScore:
			battles[i].Winner = battles[i].Home
		case battles[i].AwayScore > battles[i].HomeScore:
			battles[i].Winner = battles[i].Away
		default:
			battles[i].Winner = model.WinnerTie
		}
	}

	results := model.DayResults{
		Date:        date,
		WarID:       warID,
		Battles:     battles,
		FinalizedAt: s.clock.Now().UTC(),
	}
	raw, err := json.Marshal(results)
	if err != nil {
		return model.DayResults{}, eris.Wrap(err, "marshal results")
	}

	ttl := warEnd(warID).Sub(day) + seasonRetention
	ok, err := s.store.SetNX(ctx, kvstore.WarResultsKey(warID, date), string(raw), ttl)
	if err != nil {
		return model.DayResults{}, eris.Wrap(err, "write results")
	}
	if !ok {
		return s.Results(ctx, date)
	}

	for _, b := range battles {
		if b.Winner == model.WinnerTie {
			continue
		}
		if _, err := s.store.ZIncrBy(ctx, kvstore.WarWinsKey(warID), 1, b.Winner); err != nil {
			return model.DayResults{}, eris.Wrap(err, "credit win")
		}
	}
	if err := s.store.Expire(ctx, kvstore.WarWinsKey(warID), ttl); err != nil {
		s.log.Warn(ctx, "wins expire failed", logger.Error(err))
	}

	s.standings.Invalidate(standingsCacheKey)
	s.log.Info(ctx, "war day finalized",
		logger.String("date", date),
		logger.Int64("warId", warID))
	return results, nil
}

// Results returns the finalized record for date, or ErrNotFinalized
// when the day has not been settled.
func (s *Service) Results(ctx context.Context, date string) (model.DayResults, error) {
	day, err := time.ParseInLocation(dateLayout, date, time.UTC)
	if err != nil {
		return model.DayResults{}, eris.Wrap(err, "parse date")
	}
	raw, err := s.store.Get(ctx, kvstore.WarResultsKey(WarID(day), date))
	if errors.Is(err, kvstore.ErrNotFound) {
		return model.DayResults{}, ErrNotFinalized
	}
	if err != nil {
		return model.DayResults{}, eris.Wrap(err, "load results")
	}
	var results model.DayResults
	if err := json.Unmarshal([]byte(raw), &results); err != nil {
		return model.DayResults{}, eris.Wrap(err, "decode results")
	}
	return results, nil
}

// Standings returns the season aggregate for all six alliances sorted
// by points desc. Reads are cached briefly since the standings page is
// polled far more often than it changes.
func (s *Service) Standings(ctx context.Context) ([]model.AllianceStanding, error) {
	if cached, ok := s.standings.Get(standingsCacheKey); ok {
		return cached.([]model.AllianceStanding), nil
	}

	warID := WarID(s.clock.Now())
	byID := make(map[string]*model.AllianceStanding, len(allianceOrder))
	order := make([]*model.AllianceStanding, 0, len(allianceOrder))
	for _, id := range allianceOrder {
		st := &model.AllianceStanding{AllianceID: id}
		byID[id] = st
		order = append(order, st)
	}

	totals, err := s.store.ZRevRangeWithScores(ctx, kvstore.WarTotalKey(warID), 0, -1)
	if err != nil && !errors.Is(err, kvstore.ErrNotFound) {
		return nil, eris.Wrap(err, "load season totals")
	}
	for _, m := range totals {
		if st, ok := byID[m.Member]; ok {
			st.Points = m.Score
		}
	}

	wins, err := s.store.ZRevRangeWithScores(ctx, kvstore.WarWinsKey(warID), 0, -1)
	if err != nil && !errors.Is(err, kvstore.ErrNotFound) {
		return nil, eris.Wrap(err, "load season wins")
	}
	for _, m := range wins {
		if st, ok := byID[m.Member]; ok {
			st.Wins = int(m.Score)
		}
	}

	for _, st := range order {
		size, err := s.store.Get(ctx, kvstore.WarSizeKey(warID, st.AllianceID))
		if errors.Is(err, kvstore.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, eris.Wrap(err, "load alliance size")
		}
		st.Members = parseCount(size)
	}

	out := make([]model.AllianceStanding, len(order))
	for i, st := range order {
		out[i] = *st
	}
	sortStandings(out)
	s.standings.Set(standingsCacheKey, out)
	return out, nil
}

func sortStandings(standings []model.AllianceStanding) {
	// Stable sort keeps the rotation order for equal scores.
	sort.SliceStable(standings, func(i, j int) bool {
		return standings[i].Points > standings[j].Points
	})
}

func parseCount(raw string) int64 {
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0
	}
	return n
}
