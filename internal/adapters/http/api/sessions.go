package api

import (
	"context"
	"net/http"

	"github.com/okian/circularity/internal/domain/model"
	"github.com/okian/circularity/internal/domain/session"
)

// SessionDependencies defines the session lifecycle operations.
type SessionDependencies interface {
	CreateSession(ctx context.Context, difficulty string, canvas model.Canvas) (session.Snapshot, error)
	Session(ctx context.Context, id string) (session.Snapshot, error)
	DeleteSession(ctx context.Context, id string) error
	SetDifficulty(ctx context.Context, id, difficulty string) (session.Snapshot, error)
	Resize(ctx context.Context, id string, canvas model.Canvas) (session.Snapshot, error)
	Reset(ctx context.Context, id string) (session.Snapshot, error)
}

// SessionsHandler handles session resource requests.
type SessionsHandler struct {
	deps SessionDependencies
}

// NewSessionsHandler creates a new sessions handler.
func NewSessionsHandler(deps SessionDependencies) *SessionsHandler {
	return &SessionsHandler{deps: deps}
}

type createSessionRequest struct {
	Difficulty string  `json:"difficulty"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
}

type difficultyRequest struct {
	Difficulty string `json:"difficulty"`
}

// HandleCreate handles POST /sessions. An empty body selects the defaults.
func (h *SessionsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_session"
	var req createSessionRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
	}
	snap, err := h.deps.CreateSession(r.Context(), req.Difficulty, model.Canvas{Width: req.Width, Height: req.Height})
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	w.Header().Set("Location", "/sessions/"+snap.ID)
	writeJSON(w, http.StatusCreated, snap)
}

// HandleGet handles GET /sessions/{id}.
func (h *SessionsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_session"
	snap, err := h.deps.Session(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// HandleDelete handles DELETE /sessions/{id}.
func (h *SessionsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	const op = "api.delete_session"
	if err := h.deps.DeleteSession(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, op, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleSetDifficulty handles PUT /sessions/{id}/difficulty.
func (h *SessionsHandler) HandleSetDifficulty(w http.ResponseWriter, r *http.Request) {
	const op = "api.set_difficulty"
	var req difficultyRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if req.Difficulty == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	snap, err := h.deps.SetDifficulty(r.Context(), r.PathValue("id"), req.Difficulty)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// HandleResize handles PUT /sessions/{id}/canvas.
func (h *SessionsHandler) HandleResize(w http.ResponseWriter, r *http.Request) {
	const op = "api.resize"
	var req model.Canvas
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	snap, err := h.deps.Resize(r.Context(), r.PathValue("id"), req)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// HandleReset handles POST /sessions/{id}/reset.
func (h *SessionsHandler) HandleReset(w http.ResponseWriter, r *http.Request) {
	const op = "api.reset"
	snap, err := h.deps.Reset(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}
