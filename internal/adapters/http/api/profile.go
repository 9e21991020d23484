package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/fitrate/arena/internal/arena"
)

// ProfileHandler handles profile read and update requests.
type ProfileHandler struct {
	deps Leaderboard
}

// NewProfileHandler creates a new profile handler.
func NewProfileHandler(deps Leaderboard) *ProfileHandler {
	return &ProfileHandler{deps: deps}
}

type profileRequest struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
}

// HandleProfile handles GET /arena/profile?userId=X and
// POST /arena/profile requests.
func (h *ProfileHandler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.handleGet(w, r)
	case http.MethodPost:
		h.handleSet(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (h *ProfileHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_profile"
	userID := strings.TrimSpace(r.URL.Query().Get("userId"))
	if userID == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	profile, err := h.deps.Profile(r.Context(), userID)
	if err != nil {
		if errors.Is(err, arena.ErrInvalidUser) {
			writeError(w, http.StatusBadRequest, "bad_request", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (h *ProfileHandler) handleSet(w http.ResponseWriter, r *http.Request) {
	const op = "api.set_profile"
	var req profileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	profile, err := h.deps.SetProfile(r.Context(), req.UserID, req.DisplayName)
	if err != nil {
		if errors.Is(err, arena.ErrInvalidUser) || errors.Is(err, arena.ErrInvalidProfile) {
			writeError(w, http.StatusBadRequest, "bad_request", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, profile)
}
