package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/fitrate/arena/internal/adapters/http/api"
	"github.com/fitrate/arena/internal/arena"
	"github.com/fitrate/arena/internal/domain/model"
	"github.com/fitrate/arena/internal/matchmaking"
	"github.com/fitrate/arena/internal/war"
	"github.com/fitrate/arena/pkg/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		os.Exit(1)
	}
	_ = logger.SetLevelString("error")
	os.Exit(m.Run())
}

// Mock implementations for testing.
type mockMatchmaker struct {
	joinResult matchmaking.JoinResult
	joinErr    error
	pollResult matchmaking.PollResult
	pollErr    error
	leaveErr   error
	stats      model.QueueStats
	statsErr   error
	left       []string
}

func (m *mockMatchmaker) Join(_ context.Context, userID string, score float64, mode, thumbnail string) (matchmaking.JoinResult, error) {
	return m.joinResult, m.joinErr
}

func (m *mockMatchmaker) Poll(_ context.Context, userID string) (matchmaking.PollResult, error) {
	return m.pollResult, m.pollErr
}

func (m *mockMatchmaker) Leave(_ context.Context, userID string) error {
	m.left = append(m.left, userID)
	return m.leaveErr
}

func (m *mockMatchmaker) Stats(_ context.Context) (model.QueueStats, error) {
	return m.stats, m.statsErr
}

type mockLeaderboard struct {
	board      arena.Leaderboard
	boardErr   error
	profile    model.Profile
	profileErr error
	setErr     error
}

func (m *mockLeaderboard) Weekly(_ context.Context, userID string, limit int) (arena.Leaderboard, error) {
	return m.board, m.boardErr
}

func (m *mockLeaderboard) Profile(_ context.Context, userID string) (model.Profile, error) {
	return m.profile, m.profileErr
}

func (m *mockLeaderboard) SetProfile(_ context.Context, userID, displayName string) (model.Profile, error) {
	if m.setErr != nil {
		return model.Profile{}, m.setErr
	}
	return model.Profile{UserID: userID, DisplayName: displayName}, nil
}

type mockWars struct {
	warID         int64
	membership    model.Membership
	joinErr       error
	contribution  war.Contribution
	contributeErr error
	progress      model.DailyContribution
	progressErr   error
	battles       []model.AllianceBattle
	battlesErr    error
	standings     []model.AllianceStanding
	standingsErr  error
	results       model.DayResults
	resultsErr    error
}

func (m *mockWars) CurrentWarID() int64 { return m.warID }

func (m *mockWars) Join(_ context.Context, userID, allianceID string) (model.Membership, error) {
	return m.membership, m.joinErr
}

func (m *mockWars) Contribute(_ context.Context, userID, allianceID string, rawScore float64, mode string) (war.Contribution, error) {
	return m.contribution, m.contributeErr
}

func (m *mockWars) DailyProgress(_ context.Context, userID string) (model.DailyContribution, error) {
	if strings.TrimSpace(userID) == "" {
		return model.DailyContribution{}, war.ErrInvalidUser
	}
	return m.progress, m.progressErr
}

func (m *mockWars) TodayBattles(_ context.Context) ([]model.AllianceBattle, error) {
	return m.battles, m.battlesErr
}

func (m *mockWars) Standings(_ context.Context) ([]model.AllianceStanding, error) {
	return m.standings, m.standingsErr
}

func (m *mockWars) Results(_ context.Context, date string) (model.DayResults, error) {
	return m.results, m.resultsErr
}

type mockStatsProvider struct {
	stats map[string]interface{}
}

func (m *mockStatsProvider) GetStats() map[string]interface{} {
	return m.stats
}

type fixture struct {
	matchmaker *mockMatchmaker
	boards     *mockLeaderboard
	wars       *mockWars
	mux        *http.ServeMux
}

func newFixture() *fixture {
	f := &fixture{
		matchmaker: &mockMatchmaker{},
		boards:     &mockLeaderboard{},
		wars:       &mockWars{warID: 42},
		mux:        http.NewServeMux(),
	}
	server := api.NewServer(f.matchmaker, f.boards, f.wars, &mockStatsProvider{stats: map[string]interface{}{"uptime": "1m"}})
	server.Register(context.Background(), f.mux)
	return f
}

func (f *fixture) do(method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	w := httptest.NewRecorder()
	f.mux.ServeHTTP(w, req)
	return w
}

func TestServerRegister(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		f := newFixture()

		Convey("Then health, stats, and dashboard respond", func() {
			So(f.do("GET", "/healthz", "").Code, ShouldEqual, http.StatusOK)
			So(f.do("GET", "/stats", "").Code, ShouldEqual, http.StatusOK)

			dash := f.do("GET", "/dashboard", "")
			So(dash.Code, ShouldEqual, http.StatusOK)
			So(dash.Body.String(), ShouldContainSubstring, "FitRate Arena")
		})

		Convey("Then unknown paths are 404", func() {
			So(f.do("GET", "/unknown", "").Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestQueueEndpoints(t *testing.T) {
	Convey("Given the queue endpoints", t, func() {
		f := newFixture()

		Convey("When joining with a valid body", func() {
			f.matchmaker.joinResult = matchmaking.JoinResult{Status: model.StatusQueued}
			w := f.do("POST", "/arena/queue/join", `{"userId":"u1","score":70,"mode":"nice"}`)

			So(w.Code, ShouldEqual, http.StatusOK)
			var res matchmaking.JoinResult
			So(json.Unmarshal(w.Body.Bytes(), &res), ShouldBeNil)
			So(res.Status, ShouldEqual, model.StatusQueued)
		})

		Convey("When the join pairs immediately", func() {
			f.matchmaker.joinResult = matchmaking.JoinResult{
				Status: model.StatusMatched,
				Match:  &model.MatchRecord{BattleID: "b-1", Status: model.MatchResolved},
			}
			w := f.do("POST", "/arena/queue/join", `{"userId":"u1","score":70,"mode":"nice"}`)

			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "b-1")
		})

		Convey("When the body is malformed", func() {
			So(f.do("POST", "/arena/queue/join", `{`).Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When required fields are missing", func() {
			So(f.do("POST", "/arena/queue/join", `{"score":70}`).Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the domain rejects the input", func() {
			f.matchmaker.joinErr = matchmaking.ErrInvalidMode
			So(f.do("POST", "/arena/queue/join", `{"userId":"u1","score":70,"mode":"bogus"}`).Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When polling", func() {
			f.matchmaker.pollResult = matchmaking.PollResult{Status: model.PollWaiting, WaitSeconds: 12}
			w := f.do("GET", "/arena/queue/poll?userId=u1", "")

			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, model.PollWaiting)

			Convey("And polling without a userId fails", func() {
				So(f.do("GET", "/arena/queue/poll", "").Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When leaving", func() {
			w := f.do("POST", "/arena/queue/leave", `{"userId":"u1"}`)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(f.matchmaker.left, ShouldResemble, []string{"u1"})
		})

		Convey("When reading arena stats", func() {
			f.matchmaker.stats = model.QueueStats{Online: 7, MatchesToday: 3}
			w := f.do("GET", "/arena/stats", "")

			So(w.Code, ShouldEqual, http.StatusOK)
			var stats model.QueueStats
			So(json.Unmarshal(w.Body.Bytes(), &stats), ShouldBeNil)
			So(stats.Online, ShouldEqual, 7)
		})
	})
}

func TestLeaderboardEndpoints(t *testing.T) {
	Convey("Given the leaderboard endpoints", t, func() {
		f := newFixture()

		Convey("When reading the board", func() {
			f.boards.board = arena.Leaderboard{
				WeekKey: "2026-W35",
				Rows:    []model.LeaderboardRow{{Rank: 1, UserID: "u1", Points: 40}},
			}
			w := f.do("GET", "/arena/leaderboard?limit=10", "")

			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "2026-W35")
		})

		Convey("When the limit is not a positive integer", func() {
			So(f.do("GET", "/arena/leaderboard?limit=zero", "").Code, ShouldEqual, http.StatusBadRequest)
			So(f.do("GET", "/arena/leaderboard?limit=0", "").Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the limit exceeds the cap", func() {
			f.boards.boardErr = arena.ErrInvalidLimit
			So(f.do("GET", "/arena/leaderboard?limit=5000", "").Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When reading a profile", func() {
			f.boards.profile = model.Profile{UserID: "u1", DisplayName: "Velvet Falcon", UpdatedAt: time.Now()}
			w := f.do("GET", "/arena/profile?userId=u1", "")

			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "Velvet Falcon")

			Convey("And a missing userId fails", func() {
				So(f.do("GET", "/arena/profile", "").Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When updating a profile", func() {
			w := f.do("POST", "/arena/profile", `{"userId":"u1","displayName":"Neon Tiger"}`)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "Neon Tiger")

			Convey("And an invalid name is rejected", func() {
				f.boards.setErr = arena.ErrInvalidProfile
				So(f.do("POST", "/arena/profile", `{"userId":"u1","displayName":""}`).Code, ShouldEqual, http.StatusBadRequest)
			})
		})
	})
}

func TestWarEndpoints(t *testing.T) {
	Convey("Given the war endpoints", t, func() {
		f := newFixture()

		Convey("When joining an alliance", func() {
			f.wars.membership = model.Membership{UserID: "u1", AllianceID: war.Asia, WarID: 42}
			w := f.do("POST", "/war/join", `{"userId":"u1","allianceId":"asia"}`)

			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, war.Asia)
		})

		Convey("When joining twice", func() {
			f.wars.membership = model.Membership{UserID: "u1", AllianceID: war.Europe, WarID: 42}
			f.wars.joinErr = war.ErrAlreadyJoined
			w := f.do("POST", "/war/join", `{"userId":"u1","allianceId":"asia"}`)

			So(w.Code, ShouldEqual, http.StatusConflict)
			So(w.Body.String(), ShouldContainSubstring, "already_joined")
			So(w.Body.String(), ShouldContainSubstring, war.Europe)
		})

		Convey("When the alliance is unknown", func() {
			f.wars.joinErr = war.ErrInvalidAlliance
			So(f.do("POST", "/war/join", `{"userId":"u1","allianceId":"atlantis"}`).Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When contributing", func() {
			f.wars.contribution = war.Contribution{UserID: "u1", AllianceID: war.Asia, Scan: 3, Points: 80}
			w := f.do("POST", "/war/contribute", `{"userId":"u1","allianceId":"asia","score":80}`)

			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"scan":3`)
		})

		Convey("When a non-member contributes", func() {
			f.wars.contributeErr = war.ErrNotMember
			So(f.do("POST", "/war/contribute", `{"userId":"u1","allianceId":"asia","score":80}`).Code, ShouldEqual, http.StatusForbidden)
		})

		Convey("When contributing to the wrong alliance", func() {
			f.wars.contributeErr = war.ErrWrongAlliance
			So(f.do("POST", "/war/contribute", `{"userId":"u1","allianceId":"asia","score":80}`).Code, ShouldEqual, http.StatusConflict)
		})

		Convey("When reading daily progress", func() {
			f.wars.progress = model.DailyContribution{Scans: 3, Points: 212.5}
			w := f.do("GET", "/war/progress?userId=u1", "")

			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"scans":3`)
			So(w.Body.String(), ShouldContainSubstring, `"warId":42`)
		})

		Convey("When reading progress without a user id", func() {
			So(f.do("GET", "/war/progress", "").Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When listing today's battles", func() {
			f.wars.battles = []model.AllianceBattle{{Home: war.Asia, Away: war.Europe}}
			w := f.do("GET", "/war/battles", "")

			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"warId":42`)
		})

		Convey("When reading standings", func() {
			f.wars.standings = []model.AllianceStanding{{AllianceID: war.Asia, Points: 120}}
			w := f.do("GET", "/war/standings", "")

			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, war.Asia)
		})

		Convey("When reading results", func() {
			Convey("And the date is malformed", func() {
				So(f.do("GET", "/war/results?date=yesterday", "").Code, ShouldEqual, http.StatusBadRequest)
			})

			Convey("And the day is not finalized", func() {
				f.wars.resultsErr = war.ErrNotFinalized
				So(f.do("GET", "/war/results?date=2026-08-26", "").Code, ShouldEqual, http.StatusNotFound)
			})

			Convey("And the day is finalized", func() {
				f.wars.results = model.DayResults{Date: "2026-08-26", WarID: 42}
				w := f.do("GET", "/war/results?date=2026-08-26", "")
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, "2026-08-26")
			})
		})
	})
}
