package api

import (
	"context"
	"net/http"

	"github.com/okian/circularity/internal/domain/geometry"
	"github.com/okian/circularity/internal/domain/session"
)

// StrokeDependencies defines the interface for whole-stroke submission.
type StrokeDependencies interface {
	SubmitStroke(ctx context.Context, id, strokeID string, stroke []geometry.Point, elapsedMs float64) (session.Verdict, bool, error)
}

// StrokesHandler handles stroke submission requests.
type StrokesHandler struct {
	deps StrokeDependencies
}

// NewStrokesHandler creates a new strokes handler.
func NewStrokesHandler(deps StrokeDependencies) *StrokesHandler {
	return &StrokesHandler{deps: deps}
}

type strokeRequest struct {
	StrokeID  string           `json:"stroke_id"`
	Points    []geometry.Point `json:"points"`
	ElapsedMs float64          `json:"elapsed_ms"`
}

type duplicateResponse struct {
	Status   string `json:"status"`
	StrokeID string `json:"stroke_id"`
}

// HandlePostStroke handles POST /sessions/{id}/strokes. A stroke_id that was
// already scored for the session is acknowledged without rescoring.
func (h *StrokesHandler) HandlePostStroke(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_stroke"
	var req strokeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if len(req.Points) == 0 {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, session.ErrEmptyStroke))
		return
	}

	v, duplicate, err := h.deps.SubmitStroke(r.Context(), r.PathValue("id"), req.StrokeID, req.Points, req.ElapsedMs)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	if duplicate {
		writeJSON(w, http.StatusOK, duplicateResponse{Status: "duplicate", StrokeID: req.StrokeID})
		return
	}
	writeJSON(w, http.StatusOK, newVerdictResponse(v))
}
