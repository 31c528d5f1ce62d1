package api

import (
	"context"
	"net/http"

	"github.com/okian/circularity/internal/domain/geometry"
	"github.com/okian/circularity/internal/domain/model"
	"github.com/okian/circularity/internal/domain/session"
)

// EventDependencies defines the interface for pointer event processing.
type EventDependencies interface {
	PointerEvent(ctx context.Context, id string, ev model.PointerEvent) (session.Verdict, bool, error)
}

// EventsHandler handles pointer event requests.
type EventsHandler struct {
	deps EventDependencies
}

// NewEventsHandler creates a new events handler.
func NewEventsHandler(deps EventDependencies) *EventsHandler {
	return &EventsHandler{deps: deps}
}

// eventRequest is one forwarded pointer/touch sample.
type eventRequest struct {
	Type string  `json:"type"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	T    float64 `json:"t"`
}

type eventResponse struct {
	Status  string           `json:"status"`
	Verdict *verdictResponse `json:"verdict,omitempty"`
}

// HandlePostEvent handles POST /sessions/{id}/events. Only the "up" event
// that completes a gesture carries a verdict.
func (h *EventsHandler) HandlePostEvent(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_event"
	var req eventRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	kind, err := model.ParsePointerKind(req.Type)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	ev := model.PointerEvent{Kind: kind, Point: geometry.Pt(req.X, req.Y), T: req.T}
	v, scored, err := h.deps.PointerEvent(r.Context(), r.PathValue("id"), ev)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}

	if !scored {
		writeJSON(w, http.StatusAccepted, eventResponse{Status: "accepted"})
		return
	}
	resp := newVerdictResponse(v)
	writeJSON(w, http.StatusOK, eventResponse{Status: "scored", Verdict: &resp})
}
