package api

import (
	"context"
	"net/http"

	"github.com/okian/circularity/internal/domain/geometry"
	"github.com/okian/circularity/internal/domain/scoring"
)

// ScoreDependencies defines the stateless scoring operations.
type ScoreDependencies interface {
	ScoreStroke(ctx context.Context, stroke []geometry.Point, center geometry.Point, difficulty string, elapsedMs float64) (scoring.Result, error)
	Difficulties() []scoring.Profile
}

// ScoreHandler scores strokes that do not belong to a session.
type ScoreHandler struct {
	deps ScoreDependencies
}

// NewScoreHandler creates a new score handler.
func NewScoreHandler(deps ScoreDependencies) *ScoreHandler {
	return &ScoreHandler{deps: deps}
}

type scoreRequest struct {
	Points     []geometry.Point `json:"points"`
	Center     *geometry.Point  `json:"center"`
	Difficulty string           `json:"difficulty"`
	ElapsedMs  float64          `json:"elapsed_ms"`
}

// HandleScore handles POST /score.
func (h *ScoreHandler) HandleScore(w http.ResponseWriter, r *http.Request) {
	const op = "api.score"
	var req scoreRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if req.Center == nil {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}

	res, err := h.deps.ScoreStroke(r.Context(), req.Points, *req.Center, req.Difficulty, req.ElapsedMs)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, newResultResponse(res))
}

// HandleDifficulties handles GET /difficulties.
func (h *ScoreHandler) HandleDifficulties(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.Difficulties())
}
