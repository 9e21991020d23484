package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/fitrate/arena/internal/arena"
	"github.com/fitrate/arena/internal/domain/model"
)

// Leaderboard defines the weekly ranking and profile operations.
type Leaderboard interface {
	Weekly(ctx context.Context, userID string, limit int) (arena.Leaderboard, error)
	Profile(ctx context.Context, userID string) (model.Profile, error)
	SetProfile(ctx context.Context, userID, displayName string) (model.Profile, error)
}

// LeaderboardHandler handles weekly leaderboard requests.
type LeaderboardHandler struct {
	deps Leaderboard
}

// NewLeaderboardHandler creates a new leaderboard handler.
func NewLeaderboardHandler(deps Leaderboard) *LeaderboardHandler {
	return &LeaderboardHandler{deps: deps}
}

// HandleGetLeaderboard handles GET /arena/leaderboard?limit=N&userId=X
// requests. limit is optional; userId adds a "you" row when the caller
// sits outside the page.
func (h *LeaderboardHandler) HandleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_leaderboard"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
			return
		}
		limit = n
	}
	userID := strings.TrimSpace(r.URL.Query().Get("userId"))

	board, err := h.deps.Weekly(r.Context(), userID, limit)
	if err != nil {
		if errors.Is(err, arena.ErrInvalidLimit) {
			writeError(w, http.StatusBadRequest, "limit_exceeded", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, board)
}
