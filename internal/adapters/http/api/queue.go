package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/fitrate/arena/internal/domain/model"
	"github.com/fitrate/arena/internal/matchmaking"
)

// Matchmaker defines the queue operations the handlers need.
type Matchmaker interface {
	Join(ctx context.Context, userID string, score float64, mode, thumbnail string) (matchmaking.JoinResult, error)
	Poll(ctx context.Context, userID string) (matchmaking.PollResult, error)
	Leave(ctx context.Context, userID string) error
	Stats(ctx context.Context) (model.QueueStats, error)
}

// QueueHandler handles queue join, poll, and leave requests.
type QueueHandler struct {
	deps Matchmaker
}

// NewQueueHandler creates a new queue handler.
func NewQueueHandler(deps Matchmaker) *QueueHandler {
	return &QueueHandler{deps: deps}
}

type joinRequest struct {
	UserID    string  `json:"userId"`
	Score     float64 `json:"score"`
	Mode      string  `json:"mode"`
	Thumbnail string  `json:"thumbnail,omitempty"`
}

func (j joinRequest) validate() error {
	switch {
	case strings.TrimSpace(j.UserID) == "":
		return errors.New("missing userId")
	case strings.TrimSpace(j.Mode) == "":
		return errors.New("missing mode")
	}
	return nil
}

type leaveRequest struct {
	UserID string `json:"userId"`
}

type leaveResponse struct {
	Status string `json:"status"`
}

// HandleJoin handles POST /arena/queue/join requests.
func (h *QueueHandler) HandleJoin(w http.ResponseWriter, r *http.Request) {
	const op = "api.queue_join"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req joinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	result, err := h.deps.Join(r.Context(), req.UserID, req.Score, req.Mode, req.Thumbnail)
	if err != nil {
		if isValidation(err) {
			writeError(w, http.StatusBadRequest, "bad_request", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// HandlePoll handles GET /arena/queue/poll?userId=X requests.
func (h *QueueHandler) HandlePoll(w http.ResponseWriter, r *http.Request) {
	const op = "api.queue_poll"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	userID := strings.TrimSpace(r.URL.Query().Get("userId"))
	if userID == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}

	result, err := h.deps.Poll(r.Context(), userID)
	if err != nil {
		if isValidation(err) {
			writeError(w, http.StatusBadRequest, "bad_request", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// HandleLeave handles POST /arena/queue/leave requests.
func (h *QueueHandler) HandleLeave(w http.ResponseWriter, r *http.Request) {
	const op = "api.queue_leave"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req leaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if strings.TrimSpace(req.UserID) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}

	if err := h.deps.Leave(r.Context(), req.UserID); err != nil {
		if isValidation(err) {
			writeError(w, http.StatusBadRequest, "bad_request", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, leaveResponse{Status: "left"})
}

// isValidation reports whether err is a queue input rejection.
func isValidation(err error) bool {
	return errors.Is(err, matchmaking.ErrInvalidUser) ||
		errors.Is(err, matchmaking.ErrInvalidScore) ||
		errors.Is(err, matchmaking.ErrInvalidMode)
}
