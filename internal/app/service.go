// Package service provides the core business service that implements
// the dependencies required by the HTTP API: a registry of drawing sessions,
// their best scores and stateless scoring.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	repository "github.com/okian/circularity/internal/adapters/repository"
	"github.com/okian/circularity/internal/domain/dedupe"
	"github.com/okian/circularity/internal/domain/geometry"
	"github.com/okian/circularity/internal/domain/model"
	"github.com/okian/circularity/internal/domain/scoring"
	"github.com/okian/circularity/internal/domain/session"
	"github.com/okian/circularity/internal/domain/types"
	"github.com/okian/circularity/pkg/logger"
	"github.com/okian/circularity/pkg/metrics"
)

// Default service configuration.
const (
	defaultMaxSessions   = 10_000
	defaultSessionTTL    = 30 * time.Minute
	defaultSweepInterval = time.Minute
	defaultDedupeSize    = 50_000
	defaultMinSpacing    = 1.4
	defaultCanvasWidth   = 800
	defaultCanvasHeight  = 600
)

// Reasons a session leaves the registry.
const (
	closedDeleted = "deleted"
	closedExpired = "expired"
)

// entry guards one session. closed is set once the session left the
// registry so late callers holding the entry do not resurrect its best.
type entry struct {
	mu       sync.Mutex
	sess     *session.Session
	lastSeen time.Time
	closed   bool
}

// Service implements the API dependencies for the drawing game.
type Service struct {
	mu sync.RWMutex // guards started and stopCh

	regMu    sync.RWMutex
	sessions map[string]*entry

	// Core components
	best    repository.Store
	deduper dedupe.Deduper
	catalog *scoring.Catalog

	// Configuration
	maxSessions       int
	sessionTTL        time.Duration
	sweepInterval     time.Duration
	dedupeSize        int
	minSpacing        float64
	defaultDifficulty string
	defaultCanvas     model.Canvas
	now               func() time.Time

	// Counters for GetStats
	strokesScored atomic.Int64
	highScores    atomic.Int64
	duplicates    atomic.Int64
	expired       atomic.Int64

	// State
	started bool
	stopCh  chan struct{}
	done    chan struct{}

	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		sessions:          make(map[string]*entry),
		catalog:           scoring.NewCatalog(),
		maxSessions:       defaultMaxSessions,
		sessionTTL:        defaultSessionTTL,
		sweepInterval:     defaultSweepInterval,
		dedupeSize:        defaultDedupeSize,
		minSpacing:        defaultMinSpacing,
		defaultDifficulty: scoring.DefaultDifficulty,
		defaultCanvas:     model.Canvas{Width: defaultCanvasWidth, Height: defaultCanvasHeight},
		now:               time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = logger.Nop()
	}
	if s.best == nil {
		s.best = repository.NewTreapStore()
	}
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))

	return s
}

// Start validates the configuration and launches the session janitor.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if _, err := s.catalog.Lookup(s.defaultDifficulty); err != nil {
		return fmt.Errorf("default difficulty: %w", err)
	}

	s.stopCh = make(chan struct{})
	s.done = make(chan struct{})
	go s.janitor(ctx, s.stopCh, s.done)

	s.started = true
	s.logger.Info(ctx, "circularity service started",
		logger.Int("maxSessions", s.maxSessions),
		logger.Duration("sessionTTL", s.sessionTTL),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.String("defaultDifficulty", s.defaultDifficulty),
	)
	return nil
}

// Stop gracefully shuts down the janitor. Sessions stay in memory.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	close(s.stopCh)
	<-s.done

	s.started = false
	s.logger.Info(context.Background(), "circularity service stopped")
}

func (s *Service) janitor(ctx context.Context, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case <-ticker.C:
			if n := s.Sweep(ctx); n > 0 {
				s.logger.Debug(ctx, "expired idle sessions", logger.Int("count", n))
			}
		}
	}
}

// Sweep removes sessions idle for longer than the TTL and returns how many
// were removed.
func (s *Service) Sweep(ctx context.Context) int {
	cutoff := s.now().Add(-s.sessionTTL)

	var stale []string
	s.regMu.RLock()
	for id, e := range s.sessions {
		e.mu.Lock()
		if e.lastSeen.Before(cutoff) {
			stale = append(stale, id)
		}
		e.mu.Unlock()
	}
	s.regMu.RUnlock()

	removed := 0
	for _, id := range stale {
		if s.closeSession(ctx, id, closedExpired, cutoff) {
			removed++
		}
	}
	return removed
}

// closeSession drops id from the registry and the best-score store. When
// olderThan is non-zero the session is kept if it was touched since.
func (s *Service) closeSession(ctx context.Context, id, reason string, olderThan time.Time) bool {
	s.regMu.Lock()
	e, ok := s.sessions[id]
	if !ok {
		s.regMu.Unlock()
		return false
	}
	e.mu.Lock()
	if !olderThan.IsZero() && !e.lastSeen.Before(olderThan) {
		e.mu.Unlock()
		s.regMu.Unlock()
		return false
	}
	delete(s.sessions, id)
	active := len(s.sessions)
	s.regMu.Unlock()

	e.closed = true
	s.best.Remove(ctx, id)
	e.mu.Unlock()

	if reason == closedExpired {
		s.expired.Add(1)
	}
	metrics.RecordSessionClosed(reason)
	metrics.UpdateActiveSessions(active)
	s.logger.Debug(ctx, "session closed", logger.String("sessionID", id), logger.String("reason", reason))
	return true
}

// withSession runs fn with the session locked. The idle clock is refreshed.
func (s *Service) withSession(id string, fn func(*session.Session) error) error {
	s.regMu.RLock()
	e, ok := s.sessions[id]
	s.regMu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	e.lastSeen = s.now()
	return fn(e.sess)
}

// CreateSession registers a new idle session. An empty difficulty selects
// the default; a zero canvas selects the default canvas.
func (s *Service) CreateSession(ctx context.Context, difficulty string, canvas model.Canvas) (session.Snapshot, error) {
	profile, err := s.profile(difficulty)
	if err != nil {
		return session.Snapshot{}, err
	}
	if canvas == (model.Canvas{}) {
		canvas = s.defaultCanvas
	}

	id := uuid.NewString()
	sess, err := session.New(id, profile, canvas, session.WithMinSpacing(s.minSpacing))
	if err != nil {
		return session.Snapshot{}, err
	}

	s.regMu.Lock()
	if len(s.sessions) >= s.maxSessions {
		s.regMu.Unlock()
		metrics.RecordErrorByComponent("service", "session_limit")
		return session.Snapshot{}, fmt.Errorf("%w: %d", ErrTooManySessions, s.maxSessions)
	}
	s.sessions[id] = &entry{sess: sess, lastSeen: s.now()}
	active := len(s.sessions)
	s.regMu.Unlock()

	metrics.RecordSessionCreated()
	metrics.UpdateActiveSessions(active)
	s.logger.Debug(ctx, "session created",
		logger.String("sessionID", id),
		logger.String("difficulty", profile.Name),
	)
	return sess.Snapshot(), nil
}

// Session returns a snapshot of a live session.
func (s *Service) Session(_ context.Context, id string) (session.Snapshot, error) {
	var snap session.Snapshot
	err := s.withSession(id, func(sess *session.Session) error {
		snap = sess.Snapshot()
		return nil
	})
	return snap, err
}

// DeleteSession ends a session and forgets its best score.
func (s *Service) DeleteSession(ctx context.Context, id string) error {
	if !s.closeSession(ctx, id, closedDeleted, time.Time{}) {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return nil
}

// PointerEvent feeds one pointer event to a session. scored is true when the
// event completed a gesture and v holds its verdict.
func (s *Service) PointerEvent(ctx context.Context, id string, ev model.PointerEvent) (v session.Verdict, scored bool, err error) {
	err = s.withSession(id, func(sess *session.Session) error {
		start := time.Now()
		v, scored, err = sess.Apply(ev)
		if err != nil {
			return err
		}
		metrics.RecordPointerEvent(string(ev.Kind))
		if scored {
			s.record(ctx, id, sess.Profile().Name, v, start)
		}
		return nil
	})
	return v, scored, err
}

// SubmitStroke scores a stroke captured client-side. A non-empty strokeID
// makes the call idempotent: a repeat returns duplicate=true and scores
// nothing. The id is checked under the session lock, so an unknown session
// fails before any id is recorded.
func (s *Service) SubmitStroke(ctx context.Context, id, strokeID string, stroke []geometry.Point, elapsedMs float64) (v session.Verdict, duplicate bool, err error) {
	err = s.withSession(id, func(sess *session.Session) error {
		key := ""
		if strokeID != "" {
			key = id + "/" + strokeID
			if s.deduper.SeenAndRecord(ctx, key) {
				duplicate = true
				s.duplicates.Add(1)
				metrics.RecordDuplicateStroke()
				s.logger.Debug(ctx, "duplicate stroke skipped",
					logger.String("sessionID", id),
					logger.String("strokeID", strokeID),
				)
				return nil
			}
		}

		start := time.Now()
		var serr error
		v, serr = sess.Submit(stroke, elapsedMs)
		if serr != nil {
			if key != "" {
				s.deduper.Unrecord(ctx, key)
			}
			return serr
		}
		s.record(ctx, id, sess.Profile().Name, v, start)
		return nil
	})
	return v, duplicate, err
}

// record publishes a verdict. Must be called with the session locked.
func (s *Service) record(ctx context.Context, id, difficulty string, v session.Verdict, start time.Time) {
	metrics.RecordScoringLatency(float64(time.Since(start).Microseconds()) / 1000)
	metrics.RecordStrokeScored(difficulty, string(v.Outcome), v.Accuracy, v.Final)
	s.strokesScored.Add(1)

	if v.HighScore {
		s.highScores.Add(1)
		metrics.RecordHighScore()
		if _, err := s.best.UpdateBest(ctx, id, v.Final); err != nil {
			s.logger.Error(ctx, "best score update failed", logger.String("sessionID", id), logger.Error(err))
		}
	}

	s.logger.Debug(ctx, "stroke scored",
		logger.String("sessionID", id),
		logger.String("outcome", string(v.Outcome)),
		logger.Float64("accuracy", v.Accuracy),
		logger.Float64("final", v.Final),
		logger.Bool("highScore", v.HighScore),
	)
}

// SetDifficulty switches a session's difficulty between gestures.
func (s *Service) SetDifficulty(_ context.Context, id, difficulty string) (session.Snapshot, error) {
	profile, err := s.profile(difficulty)
	if err != nil {
		return session.Snapshot{}, err
	}
	var snap session.Snapshot
	err = s.withSession(id, func(sess *session.Session) error {
		if err := sess.SetDifficulty(profile); err != nil {
			return err
		}
		snap = sess.Snapshot()
		return nil
	})
	return snap, err
}

// Resize changes a session's canvas between gestures.
func (s *Service) Resize(_ context.Context, id string, canvas model.Canvas) (session.Snapshot, error) {
	var snap session.Snapshot
	err := s.withSession(id, func(sess *session.Session) error {
		if err := sess.Resize(canvas); err != nil {
			return err
		}
		snap = sess.Snapshot()
		return nil
	})
	return snap, err
}

// Reset clears a session's stroke. Its best score is kept.
func (s *Service) Reset(_ context.Context, id string) (session.Snapshot, error) {
	var snap session.Snapshot
	err := s.withSession(id, func(sess *session.Session) error {
		sess.Reset()
		snap = sess.Snapshot()
		return nil
	})
	return snap, err
}

// ScoreStroke scores a stroke without a session.
func (s *Service) ScoreStroke(_ context.Context, stroke []geometry.Point, center geometry.Point, difficulty string, elapsedMs float64) (scoring.Result, error) {
	profile, err := s.profile(difficulty)
	if err != nil {
		return scoring.Result{}, err
	}
	start := time.Now()
	res := scoring.Score(stroke, center, profile, elapsedMs)
	metrics.RecordScoringLatency(float64(time.Since(start).Microseconds()) / 1000)
	metrics.RecordStrokeScored(profile.Name, string(res.Outcome), res.Accuracy, res.Final)
	s.strokesScored.Add(1)
	return res, nil
}

// TopN returns the top N session bests.
func (s *Service) TopN(ctx context.Context, n int) ([]types.Entry, error) {
	entries, err := s.best.TopN(ctx, n)
	if err != nil {
		return nil, err
	}

	out := make([]types.Entry, len(entries))
	for i, e := range entries {
		out[i] = types.Entry{Rank: e.Rank, SessionID: e.SessionID, Score: e.Score}
	}
	return out, nil
}

// Rank returns the leaderboard position of a live session.
func (s *Service) Rank(ctx context.Context, id string) (types.Entry, error) {
	if err := s.withSession(id, func(*session.Session) error { return nil }); err != nil {
		return types.Entry{}, err
	}
	e, err := s.best.Best(ctx, id)
	if err != nil {
		return types.Entry{}, err
	}
	return types.Entry{Rank: e.Rank, SessionID: e.SessionID, Score: e.Score}, nil
}

// Difficulties lists the available profiles from easiest to hardest.
func (s *Service) Difficulties() []scoring.Profile {
	return s.catalog.Profiles()
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	started := s.started
	s.mu.RUnlock()

	s.regMu.RLock()
	active := len(s.sessions)
	s.regMu.RUnlock()

	ctx := context.Background()
	bests := s.best.Count(ctx)
	metrics.UpdateActiveSessions(active)
	metrics.UpdateBestEntries(bests)

	return map[string]interface{}{
		"started":           started,
		"activeSessions":    active,
		"maxSessions":       s.maxSessions,
		"bestEntries":       bests,
		"strokesScored":     s.strokesScored.Load(),
		"highScores":        s.highScores.Load(),
		"duplicateStrokes":  s.duplicates.Load(),
		"expiredSessions":   s.expired.Load(),
		"dedupeSize":        s.deduper.Size(),
		"defaultDifficulty": s.defaultDifficulty,
	}
}

func (s *Service) profile(name string) (scoring.Profile, error) {
	if name == "" {
		name = s.defaultDifficulty
	}
	p, err := s.catalog.Lookup(name)
	if err != nil {
		metrics.RecordErrorByComponent("service", "unknown_difficulty")
		return scoring.Profile{}, err
	}
	return p, nil
}

// IsNotFound reports whether err means the session or its best is unknown.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrSessionNotFound) || errors.Is(err, repository.ErrNotFound)
}
