package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/fitrate/arena/internal/domain/model"
	"github.com/fitrate/arena/internal/war"
)

// Wars defines the alliance war operations.
type Wars interface {
	CurrentWarID() int64
	Join(ctx context.Context, userID, allianceID string) (model.Membership, error)
	Contribute(ctx context.Context, userID, allianceID string, rawScore float64, mode string) (war.Contribution, error)
	DailyProgress(ctx context.Context, userID string) (model.DailyContribution, error)
	TodayBattles(ctx context.Context) ([]model.AllianceBattle, error)
	Standings(ctx context.Context) ([]model.AllianceStanding, error)
	Results(ctx context.Context, date string) (model.DayResults, error)
}

// WarHandler handles alliance war requests.
type WarHandler struct {
	deps Wars
}

// NewWarHandler creates a new war handler.
func NewWarHandler(deps Wars) *WarHandler {
	return &WarHandler{deps: deps}
}

type warJoinRequest struct {
	UserID     string `json:"userId"`
	AllianceID string `json:"allianceId"`
}

type warJoinConflict struct {
	Code       string           `json:"code"`
	Message    string           `json:"message"`
	Membership model.Membership `json:"membership"`
}

type contributeRequest struct {
	UserID     string  `json:"userId"`
	AllianceID string  `json:"allianceId"`
	Score      float64 `json:"score"`
	Mode       string  `json:"mode,omitempty"`
}

type progressResponse struct {
	WarID    int64                   `json:"warId"`
	UserID   string                  `json:"userId"`
	Progress model.DailyContribution `json:"progress"`
}

type battlesResponse struct {
	WarID   int64                  `json:"warId"`
	Battles []model.AllianceBattle `json:"battles"`
}

type standingsResponse struct {
	WarID     int64                    `json:"warId"`
	Standings []model.AllianceStanding `json:"standings"`
}

// HandleJoin handles POST /war/join requests. Joining twice returns the
// standing membership with a conflict status.
func (h *WarHandler) HandleJoin(w http.ResponseWriter, r *http.Request) {
	const op = "api.war_join"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req warJoinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	membership, err := h.deps.Join(r.Context(), req.UserID, req.AllianceID)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, membership)
	case errors.Is(err, war.ErrAlreadyJoined):
		writeJSON(w, http.StatusConflict, warJoinConflict{
			Code:       "already_joined",
			Message:    err.Error(),
			Membership: membership,
		})
	case errors.Is(err, war.ErrInvalidUser), errors.Is(err, war.ErrInvalidAlliance):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
	}
}

// HandleContribute handles POST /war/contribute requests.
func (h *WarHandler) HandleContribute(w http.ResponseWriter, r *http.Request) {
	const op = "api.war_contribute"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req contributeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	contribution, err := h.deps.Contribute(r.Context(), req.UserID, req.AllianceID, req.Score, req.Mode)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, contribution)
	case errors.Is(err, war.ErrNotMember):
		writeError(w, http.StatusForbidden, "not_member", err)
	case errors.Is(err, war.ErrWrongAlliance):
		writeError(w, http.StatusConflict, "wrong_alliance", err)
	case errors.Is(err, war.ErrInvalidUser), errors.Is(err, war.ErrInvalidAlliance),
		errors.Is(err, war.ErrInvalidScore), errors.Is(err, war.ErrInvalidMode):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
	}
}

// HandleProgress handles GET /war/progress?userId= requests.
func (h *WarHandler) HandleProgress(w http.ResponseWriter, r *http.Request) {
	const op = "api.war_progress"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	userID := strings.TrimSpace(r.URL.Query().Get("userId"))

	progress, err := h.deps.DailyProgress(r.Context(), userID)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, progressResponse{
			WarID:    h.deps.CurrentWarID(),
			UserID:   userID,
			Progress: progress,
		})
	case errors.Is(err, war.ErrInvalidUser):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
	}
}

// HandleBattles handles GET /war/battles requests.
func (h *WarHandler) HandleBattles(w http.ResponseWriter, r *http.Request) {
	const op = "api.war_battles"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	battles, err := h.deps.TodayBattles(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, battlesResponse{WarID: h.deps.CurrentWarID(), Battles: battles})
}

// HandleStandings handles GET /war/standings requests.
func (h *WarHandler) HandleStandings(w http.ResponseWriter, r *http.Request) {
	const op = "api.war_standings"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	standings, err := h.deps.Standings(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, standingsResponse{WarID: h.deps.CurrentWarID(), Standings: standings})
}

// HandleResults handles GET /war/results?date=YYYY-MM-DD requests.
func (h *WarHandler) HandleResults(w http.ResponseWriter, r *http.Request) {
	const op = "api.war_results"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	date := strings.TrimSpace(r.URL.Query().Get("date"))
	if _, err := time.Parse("2006-01-02", date); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}

	results, err := h.deps.Results(r.Context(), date)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, results)
	case errors.Is(err, war.ErrNotFinalized):
		writeError(w, http.StatusNotFound, "not_finalized", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
	}
}
