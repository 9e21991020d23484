package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/fitrate/arena/internal/domain/model"
)

// StatsHandler handles service runtime stats requests.
type StatsHandler struct {
	statsProvider StatsProvider
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(statsProvider StatsProvider) *StatsHandler {
	return &StatsHandler{statsProvider: statsProvider}
}

// HandleStats handles GET /stats requests.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_ = json.NewEncoder(w).Encode(h.statsProvider.GetStats())
}

// ArenaStats exposes the cached social-proof summary.
type ArenaStats interface {
	Stats(ctx context.Context) (model.QueueStats, error)
}

// ArenaStatsHandler handles arena stats requests.
type ArenaStatsHandler struct {
	deps ArenaStats
}

// NewArenaStatsHandler creates a new arena stats handler.
func NewArenaStatsHandler(deps ArenaStats) *ArenaStatsHandler {
	return &ArenaStatsHandler{deps: deps}
}

// HandleStats handles GET /arena/stats requests.
func (h *ArenaStatsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	const op = "api.arena_stats"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	stats, err := h.deps.Stats(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
