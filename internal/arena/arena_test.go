package arena_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/fitrate/arena/internal/adapters/kvstore"
	"github.com/fitrate/arena/internal/arena"
	"github.com/fitrate/arena/internal/domain/pseudonym"
	"github.com/fitrate/arena/pkg/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		os.Exit(1)
	}
	_ = logger.SetLevelString("error")
	os.Exit(m.Run())
}

func newArena(t *testing.T) (*arena.Service, *clockwork.FakeClock) {
	t.Helper()
	clock := clockwork.NewFakeClockAt(time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC))
	store := kvstore.NewMemory(kvstore.WithClock(clock), kvstore.WithSeed(1))
	return arena.New(store, arena.WithClock(clock), arena.WithMaxLimit(50)), clock
}

func TestRecordScore(t *testing.T) {
	Convey("Given a weekly leaderboard", t, func() {
		ctx := context.Background()
		svc, _ := newArena(t)

		Convey("When recording scores for one user", func() {
			first, err := svc.RecordScore(ctx, "u1", 10)
			So(err, ShouldBeNil)
			So(first.Points, ShouldEqual, 10)
			So(first.Rank, ShouldEqual, 1)

			second, err := svc.RecordScore(ctx, "u1", 5)
			So(err, ShouldBeNil)

			Convey("Then increments accumulate", func() {
				So(second.Points, ShouldEqual, 15)
				So(second.Rank, ShouldEqual, 1)
			})
		})

		Convey("When a second user overtakes", func() {
			_, err := svc.RecordScore(ctx, "u1", 10)
			So(err, ShouldBeNil)
			standing, err := svc.RecordScore(ctx, "u2", 25)
			So(err, ShouldBeNil)

			Convey("Then ranks reflect current sorted order", func() {
				So(standing.Rank, ShouldEqual, 1)

				board, err := svc.Weekly(ctx, "", 10)
				So(err, ShouldBeNil)
				So(board.Rows[0].UserID, ShouldEqual, "u2")
				So(board.Rows[1].UserID, ShouldEqual, "u1")
			})
		})

		Convey("When input is invalid", func() {
			_, err := svc.RecordScore(ctx, "", 10)
			So(err, ShouldEqual, arena.ErrInvalidUser)

			_, err = svc.RecordScore(ctx, "u1", 0)
			So(err, ShouldEqual, arena.ErrInvalidPoints)

			_, err = svc.RecordScore(ctx, "u1", -5)
			So(err, ShouldEqual, arena.ErrInvalidPoints)
		})
	})
}

func TestWeekly(t *testing.T) {
	Convey("Given a leaderboard with a dozen users", t, func() {
		ctx := context.Background()
		svc, clock := newArena(t)

		for i := 1; i <= 12; i++ {
			_, err := svc.RecordScore(ctx, fmt.Sprintf("user-%02d", i), int64(i*10))
			So(err, ShouldBeNil)
		}

		Convey("When fetching the top five", func() {
			board, err := svc.Weekly(ctx, "", 5)
			So(err, ShouldBeNil)

			Convey("Then rows are densely ranked in point order", func() {
				So(len(board.Rows), ShouldEqual, 5)
				So(board.Rows[0].UserID, ShouldEqual, "user-12")
				So(board.Rows[0].Points, ShouldEqual, 120)
				for i, row := range board.Rows {
					So(row.Rank, ShouldEqual, i+1)
					if i > 0 {
						So(row.Points, ShouldBeLessThanOrEqualTo, board.Rows[i-1].Points)
					}
				}
			})

			Convey("Then every row carries a display name and tier", func() {
				for _, row := range board.Rows {
					So(row.DisplayName, ShouldNotBeEmpty)
					So(row.Tier, ShouldEqual, arena.TierFor(row.Points))
				}
				So(board.Rows[0].Tier, ShouldEqual, arena.TierSilver)
				So(board.Rows[4].Tier, ShouldEqual, arena.TierBronze)
			})
		})

		Convey("When the requester is outside the top rows", func() {
			board, err := svc.Weekly(ctx, "user-02", 5)
			So(err, ShouldBeNil)

			Convey("Then their own standing rides along", func() {
				So(board.You, ShouldNotBeNil)
				So(board.You.UserID, ShouldEqual, "user-02")
				So(board.You.Rank, ShouldEqual, 11)
				So(board.You.Points, ShouldEqual, 20)
				So(board.You.You, ShouldBeTrue)
			})
		})

		Convey("When the requester is inside the top rows", func() {
			board, err := svc.Weekly(ctx, "user-12", 5)
			So(err, ShouldBeNil)
			So(board.You, ShouldBeNil)
			So(board.Rows[0].You, ShouldBeTrue)
		})

		Convey("When the requester has no points this week", func() {
			board, err := svc.Weekly(ctx, "stranger", 5)
			So(err, ShouldBeNil)
			So(board.You, ShouldBeNil)
		})

		Convey("When the limit is out of range", func() {
			_, err := svc.Weekly(ctx, "", -1)
			So(err, ShouldEqual, arena.ErrInvalidLimit)

			_, err = svc.Weekly(ctx, "", 51)
			So(err, ShouldEqual, arena.ErrInvalidLimit)
		})

		Convey("When the week rolls over", func() {
			clock.Advance(7 * 24 * time.Hour)

			board, err := svc.Weekly(ctx, "", 5)
			So(err, ShouldBeNil)

			Convey("Then the new week starts empty", func() {
				So(board.Rows, ShouldBeEmpty)
			})
		})
	})
}

func TestTiers(t *testing.T) {
	Convey("Given the tier thresholds", t, func() {
		So(arena.TierFor(0), ShouldEqual, arena.TierBronze)
		So(arena.TierFor(99), ShouldEqual, arena.TierBronze)
		So(arena.TierFor(100), ShouldEqual, arena.TierSilver)
		So(arena.TierFor(249), ShouldEqual, arena.TierSilver)
		So(arena.TierFor(250), ShouldEqual, arena.TierGold)
		So(arena.TierFor(500), ShouldEqual, arena.TierPlatinum)
		So(arena.TierFor(999), ShouldEqual, arena.TierPlatinum)
		So(arena.TierFor(1000), ShouldEqual, arena.TierDiamond)
	})
}

func TestProfiles(t *testing.T) {
	Convey("Given the profile store", t, func() {
		ctx := context.Background()
		svc, _ := newArena(t)

		Convey("When a user never set a name", func() {
			profile, err := svc.Profile(ctx, "u1")
			So(err, ShouldBeNil)

			Convey("Then the deterministic pseudonym is served", func() {
				So(profile.DisplayName, ShouldEqual, pseudonym.ForUser("u1"))
			})
		})

		Convey("When a user sets a name", func() {
			_, err := svc.SetProfile(ctx, "u1", "  Fit Queen  ")
			So(err, ShouldBeNil)

			profile, err := svc.Profile(ctx, "u1")
			So(err, ShouldBeNil)
			So(profile.DisplayName, ShouldEqual, "Fit Queen")

			Convey("Then the leaderboard shows it", func() {
				_, err := svc.RecordScore(ctx, "u1", 10)
				So(err, ShouldBeNil)

				board, err := svc.Weekly(ctx, "", 5)
				So(err, ShouldBeNil)
				So(board.Rows[0].DisplayName, ShouldEqual, "Fit Queen")
			})
		})

		Convey("When the name is invalid", func() {
			_, err := svc.SetProfile(ctx, "u1", "")
			So(err, ShouldEqual, arena.ErrInvalidProfile)

			_, err = svc.SetProfile(ctx, "u1", "this display name is way past the thirty-two limit")
			So(err, ShouldEqual, arena.ErrInvalidProfile)

			_, err = svc.SetProfile(ctx, "", "name")
			So(err, ShouldEqual, arena.ErrInvalidUser)
		})
	})
}
