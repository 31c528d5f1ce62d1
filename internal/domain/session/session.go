// Package session implements the drawing state machine that owns one
// stroke buffer and hands the frozen stroke to the scoring engine.
//
// A Session is not safe for concurrent use; callers serialise access.
package session

import (
	"fmt"

	"github.com/okian/circularity/internal/domain/geometry"
	"github.com/okian/circularity/internal/domain/model"
	"github.com/okian/circularity/internal/domain/scoring"
)

// defaultMinSpacing is the distance in pixels a pointer must travel before
// another sample is recorded.
const defaultMinSpacing = 1.4

// State is a node of the drawing state machine.
type State int

// States.
const (
	Idle State = iota
	Drawing
	Scored
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Drawing:
		return "drawing"
	case Scored:
		return "scored"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// MarshalText renders the state by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Verdict is the outcome of one completed gesture.
type Verdict struct {
	scoring.Result
	// HighScore is true when Final beat the session's previous best.
	HighScore bool `json:"high_score"`
	// Best is the session best after this verdict.
	Best float64 `json:"best"`
}

// Option applies a configuration option to a Session.
type Option func(*Session)

// WithMinSpacing sets the sampling filter distance. Zero records every move.
func WithMinSpacing(px float64) Option {
	return func(s *Session) {
		if px >= 0 {
			s.minSpacing = px
		}
	}
}

// Session is one player's drawing context: difficulty, canvas, the active
// stroke and the best score so far.
type Session struct {
	id         string
	profile    scoring.Profile
	canvas     model.Canvas
	center     geometry.Point
	minSpacing float64

	state   State
	stroke  []geometry.Point
	startMs float64

	last     *Verdict
	best     float64
	attempts int
}

// New creates an idle session.
func New(id string, profile scoring.Profile, canvas model.Canvas, opts ...Option) (*Session, error) {
	if err := canvas.Validate(); err != nil {
		return nil, err
	}
	s := &Session{
		id:         id,
		profile:    profile,
		canvas:     canvas,
		center:     canvas.Center(),
		minSpacing: defaultMinSpacing,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// State returns the current state.
func (s *Session) State() State { return s.state }

// Center returns the target the stroke must enclose.
func (s *Session) Center() geometry.Point { return s.center }

// Profile returns the active difficulty.
func (s *Session) Profile() scoring.Profile { return s.profile }

// Best returns the best final score of this session.
func (s *Session) Best() float64 { return s.best }

// Stroke returns a copy of the current stroke buffer.
func (s *Session) Stroke() []geometry.Point {
	return append([]geometry.Point(nil), s.stroke...)
}

// Last returns the most recent verdict, if any.
func (s *Session) Last() (Verdict, bool) {
	if s.last == nil {
		return Verdict{}, false
	}
	return *s.last, true
}

// Begin starts a new gesture at p, discarding any previous stroke.
func (s *Session) Begin(p geometry.Point, tMs float64) error {
	if !p.IsFinite() {
		return ErrInvalidPoint
	}
	s.stroke = append(s.stroke[:0:0], p)
	s.startMs = tMs
	s.last = nil
	s.state = Drawing
	return nil
}

// Move records p when drawing and far enough from the previous sample.
// It reports whether the point was recorded.
func (s *Session) Move(p geometry.Point) bool {
	if s.state != Drawing || !p.IsFinite() {
		return false
	}
	if n := len(s.stroke); n > 0 && geometry.Distance(s.stroke[n-1], p) <= s.minSpacing {
		return false
	}
	s.stroke = append(s.stroke, p)
	return true
}

// End freezes the stroke and scores it. The elapsed time is tMs minus the
// Begin timestamp.
func (s *Session) End(tMs float64) (Verdict, error) {
	if s.state != Drawing {
		return Verdict{}, ErrNotDrawing
	}
	return s.score(s.stroke, tMs-s.startMs), nil
}

// Abandon drops an in-progress gesture without scoring it. It reports
// whether there was a gesture to drop.
func (s *Session) Abandon() bool {
	if s.state != Drawing {
		return false
	}
	s.stroke = nil
	s.state = Idle
	return true
}

// Submit scores a stroke captured elsewhere, bypassing pointer events.
func (s *Session) Submit(stroke []geometry.Point, elapsedMs float64) (Verdict, error) {
	if s.state == Drawing {
		return Verdict{}, ErrDrawing
	}
	if len(stroke) == 0 {
		return Verdict{}, ErrEmptyStroke
	}
	return s.score(append([]geometry.Point(nil), stroke...), elapsedMs), nil
}

// Apply feeds a pointer event into the state machine. scored is true when
// the event completed a gesture.
func (s *Session) Apply(ev model.PointerEvent) (v Verdict, scored bool, err error) {
	switch ev.Kind {
	case model.PointerDown:
		return Verdict{}, false, s.Begin(ev.Point, ev.T)
	case model.PointerMove:
		s.Move(ev.Point)
		return Verdict{}, false, nil
	case model.PointerUp:
		v, err = s.End(ev.T)
		return v, err == nil, err
	case model.PointerLeave:
		s.Abandon()
		return Verdict{}, false, nil
	default:
		return Verdict{}, false, fmt.Errorf("%w: %q", model.ErrUnknownPointerKind, ev.Kind)
	}
}

// SetDifficulty switches the profile. Not allowed mid-gesture.
func (s *Session) SetDifficulty(p scoring.Profile) error {
	if s.state == Drawing {
		return ErrDrawing
	}
	s.profile = p
	s.center = s.canvas.Center()
	return nil
}

// Resize changes the canvas and recomputes the center. Not allowed
// mid-gesture.
func (s *Session) Resize(c model.Canvas) error {
	if s.state == Drawing {
		return ErrDrawing
	}
	if err := c.Validate(); err != nil {
		return err
	}
	s.canvas = c
	s.center = c.Center()
	return nil
}

// Reset clears the stroke and last verdict. The best score survives.
func (s *Session) Reset() {
	s.stroke = nil
	s.last = nil
	s.state = Idle
}

func (s *Session) score(stroke []geometry.Point, elapsedMs float64) Verdict {
	res := scoring.Score(stroke, s.center, s.profile, elapsedMs)
	v := Verdict{Result: res}
	if res.Final > s.best {
		s.best = res.Final
		v.HighScore = true
	}
	v.Best = s.best

	s.stroke = stroke
	s.last = &v
	s.attempts++
	s.state = Scored
	return v
}

// Snapshot is a read-only view of a session.
type Snapshot struct {
	ID          string          `json:"id"`
	State       State           `json:"state"`
	Difficulty  scoring.Profile `json:"difficulty"`
	Canvas      model.Canvas    `json:"canvas"`
	Center      geometry.Point  `json:"center"`
	StrokeLen   int             `json:"stroke_len"`
	Attempts    int             `json:"attempts"`
	Best        float64         `json:"best"`
	LastVerdict *Verdict        `json:"last,omitempty"`
}

// Snapshot captures the current state.
func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		ID:         s.id,
		State:      s.state,
		Difficulty: s.profile,
		Canvas:     s.canvas,
		Center:     s.center,
		StrokeLen:  len(s.stroke),
		Attempts:   s.attempts,
		Best:       s.best,
	}
	if s.last != nil {
		v := *s.last
		snap.LastVerdict = &v
	}
	return snap
}
