package model_test

import (
	"encoding/json"
	"testing"
	"time"

	model "github.com/fitrate/arena/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestQueueEntry(t *testing.T) {
	convey.Convey("Given a QueueEntry struct", t, func() {
		convey.Convey("When creating a new entry", func() {
			joined := time.Now()
			entry := model.QueueEntry{
				UserID:    "user-123",
				Score:     81.5,
				Thumbnail: "thumb://abc",
				Mode:      "roast",
				JoinedAt:  joined,
				Status:    model.StatusQueued,
			}

			convey.Convey("Then it should have the correct values", func() {
				convey.So(entry.UserID, convey.ShouldEqual, "user-123")
				convey.So(entry.Score, convey.ShouldEqual, 81.5)
				convey.So(entry.Mode, convey.ShouldEqual, "roast")
				convey.So(entry.JoinedAt, convey.ShouldEqual, joined)
				convey.So(entry.Status, convey.ShouldEqual, "queued")
				convey.So(entry.BattleID, convey.ShouldEqual, "")
			})
		})

		convey.Convey("When marking an entry matched", func() {
			entry := model.QueueEntry{
				UserID: "user-123",
				Status: model.StatusQueued,
			}
			entry.Status = model.StatusMatched
			entry.BattleID = "battle-9"

			convey.Convey("Then status and battle id travel together", func() {
				convey.So(entry.Status, convey.ShouldEqual, model.StatusMatched)
				convey.So(entry.BattleID, convey.ShouldEqual, "battle-9")
			})
		})

		convey.Convey("When round-tripping through JSON", func() {
			entry := model.QueueEntry{
				UserID:   "user-123",
				Score:    64.2,
				Mode:     "nice",
				JoinedAt: time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC),
				Status:   model.StatusQueued,
			}

			raw, err := json.Marshal(entry)
			convey.So(err, convey.ShouldBeNil)

			var decoded model.QueueEntry
			convey.So(json.Unmarshal(raw, &decoded), convey.ShouldBeNil)

			convey.Convey("Then nothing is lost and the empty thumbnail is omitted", func() {
				convey.So(decoded, convey.ShouldResemble, entry)
				convey.So(string(raw), convey.ShouldNotContainSubstring, "thumbnail")
			})
		})
	})
}

func TestGhostEntry(t *testing.T) {
	convey.Convey("Given a GhostEntry struct", t, func() {
		convey.Convey("When creating a replayed ghost", func() {
			ghost := model.GhostEntry{
				Hash:        "a1b2c3",
				UserID:      "user-456",
				Score:       72.0,
				Thumbnail:   "thumb://def",
				Mode:        "drip",
				DisplayName: "Velvet Falcon",
				AddedAt:     time.Now(),
			}

			convey.Convey("Then it should not be synthetic", func() {
				convey.So(ghost.Synthetic, convey.ShouldBeFalse)
				convey.So(ghost.Hash, convey.ShouldNotBeEmpty)
				convey.So(ghost.DisplayName, convey.ShouldEqual, "Velvet Falcon")
			})
		})

		convey.Convey("When creating a synthetic ghost", func() {
			ghost := model.GhostEntry{
				Score:       55.0,
				DisplayName: "Neon Heron",
				Synthetic:   true,
			}

			convey.Convey("Then it carries no thumbnail and is flagged", func() {
				convey.So(ghost.Synthetic, convey.ShouldBeTrue)
				convey.So(ghost.Thumbnail, convey.ShouldEqual, "")
			})
		})
	})
}

func TestMatchRecord(t *testing.T) {
	convey.Convey("Given a MatchRecord", t, func() {
		convey.Convey("When a match is created", func() {
			rec := model.MatchRecord{
				BattleID: "battle-1",
				Mode:     "roast",
				Status:   model.MatchPending,
				Challenger: model.MatchSide{
					UserID: "user-a",
					Score:  80.0,
				},
				CreatedAt: time.Now(),
			}

			convey.Convey("Then it starts pending with no winner", func() {
				convey.So(rec.Status, convey.ShouldEqual, model.MatchPending)
				convey.So(rec.Winner, convey.ShouldEqual, "")
				convey.So(rec.Opponent.UserID, convey.ShouldEqual, "")
			})
		})

		convey.Convey("When a match resolves with equal scores", func() {
			rec := model.MatchRecord{
				BattleID:   "battle-2",
				Status:     model.MatchResolved,
				Challenger: model.MatchSide{UserID: "user-a", Score: 70},
				Opponent:   model.MatchSide{UserID: "user-b", Score: 70},
				Winner:     model.WinnerTie,
			}

			convey.Convey("Then the winner is the tie marker", func() {
				convey.So(rec.Winner, convey.ShouldEqual, "tie")
			})
		})

		convey.Convey("When the opponent is a ghost", func() {
			rec := model.MatchRecord{
				BattleID:   "battle-3",
				Status:     model.MatchResolved,
				Challenger: model.MatchSide{UserID: "user-a", Score: 70},
				Opponent:   model.MatchSide{UserID: "ghost:a1b2", Score: 62, Ghost: true},
				Winner:     "user-a",
			}

			convey.Convey("Then the ghost flag survives JSON", func() {
				raw, err := json.Marshal(rec)
				convey.So(err, convey.ShouldBeNil)
				var decoded model.MatchRecord
				convey.So(json.Unmarshal(raw, &decoded), convey.ShouldBeNil)
				convey.So(decoded.Opponent.Ghost, convey.ShouldBeTrue)
			})
		})
	})
}

func TestLeaderboardRow(t *testing.T) {
	convey.Convey("Given a LeaderboardRow", t, func() {
		convey.Convey("When creating a ranked row", func() {
			row := model.LeaderboardRow{
				Rank:        1,
				UserID:      "user-123",
				Points:      1250,
				DisplayName: "Crimson Lynx",
				Tier:        "Diamond",
			}

			convey.Convey("Then it should have the correct values", func() {
				convey.So(row.Rank, convey.ShouldEqual, 1)
				convey.So(row.Points, convey.ShouldEqual, 1250)
				convey.So(row.Tier, convey.ShouldEqual, "Diamond")
				convey.So(row.You, convey.ShouldBeFalse)
			})
		})
	})
}

func TestDailyContribution(t *testing.T) {
	convey.Convey("Given a DailyContribution", t, func() {
		convey.Convey("When accumulating scans", func() {
			c := model.DailyContribution{Scans: 4, Points: 320.0}
			c.Scans++
			c.Points += 76.5

			convey.Convey("Then scans only ever grow", func() {
				convey.So(c.Scans, convey.ShouldEqual, 5)
				convey.So(c.Points, convey.ShouldEqual, 396.5)
			})
		})
	})
}

func TestDayResults(t *testing.T) {
	convey.Convey("Given finalized day results", t, func() {
		res := model.DayResults{
			Date:  "2026-08-21",
			WarID: 42,
			Battles: []model.AllianceBattle{
				{Home: "asia", Away: "oceania", HomeScore: 812.5, AwayScore: 640.0, Winner: "asia"},
				{Home: "europe", Away: "africa", HomeScore: 230.0, AwayScore: 230.0, Winner: model.WinnerTie},
			},
			FinalizedAt: time.Now(),
		}

		convey.Convey("Then each battle carries its outcome", func() {
			convey.So(len(res.Battles), convey.ShouldEqual, 2)
			convey.So(res.Battles[0].Winner, convey.ShouldEqual, "asia")
			convey.So(res.Battles[1].Winner, convey.ShouldEqual, "tie")
		})
	})
}
