// Package battle creates and resolves match records. Matchmaking consumes
// it through its own small interface so the queue never imports this
// package's concrete type.
package battle

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/fitrate/arena/internal/adapters/kvstore"
	"github.com/fitrate/arena/internal/domain/model"
	"github.com/fitrate/arena/pkg/logger"
)

// Match records outlive both pollers by a wide margin; after an hour
// nobody is coming back for the result.
const recordTTL = time.Hour

// Service stores match records in the key-value store.
type Service struct {
	store kvstore.Store
	clock clockwork.Clock
	log   logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithClock injects a clock for deterministic timestamps in tests.
func WithClock(clock clockwork.Clock) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// New constructs a battle service on the given store.
func New(store kvstore.Store, opts ...Option) *Service {
	s := &Service{
		store: store,
		clock: clockwork.NewRealClock(),
		log:   logger.Get().Named("battle"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateMatch opens a pending match with the challenger side and returns
// the battle id.
func (s *Service) CreateMatch(ctx context.Context, mode string, challenger model.MatchSide) (string, error) {
	record := model.MatchRecord{
		BattleID:   uuid.NewString(),
		Mode:       mode,
		Status:     model.MatchPending,
		Challenger: challenger,
		CreatedAt:  s.clock.Now().UTC(),
	}
	if err := s.write(ctx, record); err != nil {
		return "", err
	}
	return record.BattleID, nil
}

// ResolveMatch fills in the opponent side, decides the winner, and marks
// the record resolved. Resolving an already-resolved match is a no-op so
// racing pollers cannot flip a result.
func (s *Service) ResolveMatch(ctx context.Context, battleID string, opponent model.MatchSide) error {
	record, err := s.GetMatch(ctx, battleID)
	if err != nil {
		return err
	}
	if record.Status == model.MatchResolved {
		return nil
	}

	record.Opponent = opponent
	record.Status = model.MatchResolved
	record.ResolvedAt = s.clock.Now().UTC()

	switch {
	case record.Challenger.Score > opponent.Score:
		record.Winner = record.Challenger.UserID
	case opponent.Score > record.Challenger.Score:
		record.Winner = opponent.UserID
	default:
		record.Winner = model.WinnerTie
	}
	record.Verdict = verdictFor(record)

	return s.write(ctx, record)
}

// GetMatch loads a match record. Absent or expired records surface as
// kvstore.ErrNotFound.
func (s *Service) GetMatch(ctx context.Context, battleID string) (model.MatchRecord, error) {
	raw, err := s.store.Get(ctx, kvstore.BattleKey(battleID))
	if err != nil {
		return model.MatchRecord{}, err
	}
	var record model.MatchRecord
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		return model.MatchRecord{}, err
	}
	return record, nil
}

func (s *Service) write(ctx context.Context, record model.MatchRecord) error {
	raw, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return s.store.Set(ctx, kvstore.BattleKey(record.BattleID), string(raw), recordTTL)
}
