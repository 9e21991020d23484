// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"
)

// StatsProvider exposes service-level runtime statistics.
type StatsProvider interface {
	GetStats() map[string]interface{}
}

// Server wires HTTP routes for the arena API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	queueHandler       *QueueHandler
	arenaStatsHandler  *ArenaStatsHandler
	leaderboardHandler *LeaderboardHandler
	profileHandler     *ProfileHandler
	warHandler         *WarHandler
	dashboardHandler   *dashboardHandler
}

// NewServer creates an API server over the domain services.
func NewServer(matchmaker Matchmaker, boards Leaderboard, wars Wars, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(statsProvider),
		queueHandler:       NewQueueHandler(matchmaker),
		arenaStatsHandler:  NewArenaStatsHandler(matchmaker),
		leaderboardHandler: NewLeaderboardHandler(boards),
		profileHandler:     NewProfileHandler(boards),
		warHandler:         NewWarHandler(wars),
		dashboardHandler:   newDashboardHandler(),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/dashboard", s.dashboardHandler.HandleDashboard)
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	mux.HandleFunc("/arena/queue/join", MetricsMiddleware(s.queueHandler.HandleJoin, "queue_join"))
	mux.HandleFunc("/arena/queue/poll", MetricsMiddleware(s.queueHandler.HandlePoll, "queue_poll"))
	mux.HandleFunc("/arena/queue/leave", MetricsMiddleware(s.queueHandler.HandleLeave, "queue_leave"))
	mux.HandleFunc("/arena/stats", MetricsMiddleware(s.arenaStatsHandler.HandleStats, "arena_stats"))
	mux.HandleFunc("/arena/leaderboard", MetricsMiddleware(s.leaderboardHandler.HandleGetLeaderboard, "leaderboard"))
	mux.HandleFunc("/arena/profile", MetricsMiddleware(s.profileHandler.HandleProfile, "profile"))

	mux.HandleFunc("/war/join", MetricsMiddleware(s.warHandler.HandleJoin, "war_join"))
	mux.HandleFunc("/war/contribute", MetricsMiddleware(s.warHandler.HandleContribute, "war_contribute"))
	mux.HandleFunc("/war/progress", MetricsMiddleware(s.warHandler.HandleProgress, "war_progress"))
	mux.HandleFunc("/war/battles", MetricsMiddleware(s.warHandler.HandleBattles, "war_battles"))
	mux.HandleFunc("/war/standings", MetricsMiddleware(s.warHandler.HandleStandings, "war_standings"))
	mux.HandleFunc("/war/results", MetricsMiddleware(s.warHandler.HandleResults, "war_results"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
