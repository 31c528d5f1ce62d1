// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	repository "github.com/okian/circularity/internal/adapters/repository"
	service "github.com/okian/circularity/internal/app"
	"github.com/okian/circularity/internal/domain/model"
	"github.com/okian/circularity/internal/domain/scoring"
	"github.com/okian/circularity/internal/domain/session"
	"github.com/okian/circularity/internal/domain/types"
)

const defaultMaxLeaderboardLimit = 100

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	SessionDependencies
	EventDependencies
	StrokeDependencies
	ScoreDependencies
	LeaderboardDependencies
	RankDependencies
	StatsProvider
}

// Entry mirrors the read shape returned by leaderboard queries.
type Entry = types.Entry

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	sessionsHandler    *SessionsHandler
	eventsHandler      *EventsHandler
	strokesHandler     *StrokesHandler
	scoreHandler       *ScoreHandler
	leaderboardHandler *LeaderboardHandler
	rankHandler        *RankHandler
}

// ServerOption applies a configuration option to the Server.
type ServerOption func(*serverConfig)

type serverConfig struct {
	maxLimit int
}

// WithMaxLeaderboardLimit caps GET /leaderboard?limit.
func WithMaxLeaderboardLimit(n int) ServerOption {
	return func(c *serverConfig) {
		if n > 0 {
			c.maxLimit = n
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...ServerOption) *Server {
	cfg := serverConfig{maxLimit: defaultMaxLeaderboardLimit}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(deps),
		sessionsHandler:    NewSessionsHandler(deps),
		eventsHandler:      NewEventsHandler(deps),
		strokesHandler:     NewStrokesHandler(deps),
		scoreHandler:       NewScoreHandler(deps),
		leaderboardHandler: NewLeaderboardHandler(deps, cfg.maxLimit),
		rankHandler:        NewRankHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	handle := func(pattern, endpoint string, h http.HandlerFunc) {
		mux.HandleFunc(pattern, MetricsMiddleware(h, endpoint))
	}

	handle("GET /healthz", "healthz", s.healthHandler.HandleHealth)
	handle("GET /stats", "stats", s.statsHandler.HandleStats)
	handle("GET /difficulties", "difficulties", s.scoreHandler.HandleDifficulties)
	handle("POST /score", "score", s.scoreHandler.HandleScore)
	handle("GET /leaderboard", "leaderboard", s.leaderboardHandler.HandleGetLeaderboard)

	handle("POST /sessions", "sessions", s.sessionsHandler.HandleCreate)
	handle("GET /sessions/{id}", "session", s.sessionsHandler.HandleGet)
	handle("DELETE /sessions/{id}", "session", s.sessionsHandler.HandleDelete)
	handle("PUT /sessions/{id}/difficulty", "session_difficulty", s.sessionsHandler.HandleSetDifficulty)
	handle("PUT /sessions/{id}/canvas", "session_canvas", s.sessionsHandler.HandleResize)
	handle("POST /sessions/{id}/reset", "session_reset", s.sessionsHandler.HandleReset)
	handle("POST /sessions/{id}/events", "session_events", s.eventsHandler.HandlePostEvent)
	handle("POST /sessions/{id}/strokes", "session_strokes", s.strokesHandler.HandlePostStroke)
	handle("GET /sessions/{id}/rank", "session_rank", s.rankHandler.HandleGetRank)
}

// notEnclosedMessage is shown to players whose loop missed the target.
const notEnclosedMessage = "The red dot is not inside your circle!"

// verdictResponse is the wire shape of a scored stroke.
type verdictResponse struct {
	scoring.Result
	HighScore bool    `json:"high_score"`
	Best      float64 `json:"best"`
	Message   string  `json:"message,omitempty"`
}

func newResultResponse(r scoring.Result) verdictResponse {
	resp := verdictResponse{Result: r}
	if r.Outcome == scoring.OutcomeNotEnclosed {
		resp.Message = notEnclosedMessage
	}
	return resp
}

func newVerdictResponse(v session.Verdict) verdictResponse {
	resp := newResultResponse(v.Result)
	resp.HighScore = v.HighScore
	resp.Best = v.Best
	return resp
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

// writeServiceError maps domain and service errors to status codes.
func writeServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case service.IsNotFound(err):
		writeError(w, http.StatusNotFound, "not_found", Wrap(op, err))
	case errors.Is(err, service.ErrTooManySessions):
		writeError(w, http.StatusTooManyRequests, "session_limit", Wrap(op, err))
	case errors.Is(err, session.ErrDrawing), errors.Is(err, session.ErrNotDrawing):
		writeError(w, http.StatusConflict, "wrong_state", Wrap(op, err))
	case errors.Is(err, scoring.ErrUnknownDifficulty),
		errors.Is(err, model.ErrInvalidCanvas),
		errors.Is(err, model.ErrUnknownPointerKind),
		errors.Is(err, session.ErrEmptyStroke),
		errors.Is(err, session.ErrInvalidPoint),
		errors.Is(err, repository.ErrInvalidLimit),
		errors.Is(err, ErrBadRequest):
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", WrapKind(op, ErrInternal, err))
	}
}

// decodeJSON reads a single JSON object into v, rejecting unknown fields.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
