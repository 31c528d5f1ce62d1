// Package config defines service configuration structures and loading hooks.
//
// Conventions:
//   - New() builds a Config with defaults; Load layers file and env on top.
//   - Validate reports every problem wrapped in ErrInvalidConfig.
package config

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/okian/circularity/internal/domain/scoring"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// MaxSessions caps the number of live drawing sessions.
	MaxSessions int `koanf:"max_sessions"`

	// SessionTTLMS expires sessions idle for longer than this.
	SessionTTLMS int `koanf:"session_ttl_ms"`

	// SweepIntervalMS is how often expired sessions are collected.
	SweepIntervalMS int `koanf:"sweep_interval_ms"`

	// DedupeSize bounds the number of remembered stroke ids.
	DedupeSize int `koanf:"dedupe_size"`

	// MinSampleSpacing is the pointer travel in pixels required between samples.
	MinSampleSpacing float64 `koanf:"min_sample_spacing"`

	// DefaultDifficulty is used when a request names none.
	DefaultDifficulty string `koanf:"default_difficulty"`

	// MaxLeaderboardLimit caps GET /leaderboard?limit.
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit"`

	// CanvasWidth and CanvasHeight are used when a session is created without a size.
	CanvasWidth  float64 `koanf:"canvas_width"`
	CanvasHeight float64 `koanf:"canvas_height"`

	// Difficulties overrides the stock easy, medium and hard profiles.
	Difficulties map[string]Difficulty `koanf:"difficulties"`
}

// Difficulty holds the tunables of one difficulty profile.
type Difficulty struct {
	DotRadius  float64 `koanf:"dot_radius"`
	SigmaScale float64 `koanf:"sigma_scale"`
	TimeScale  float64 `koanf:"time_scale"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		LogFormat:           "text",
		Addr:                ":9080",
		MaxSessions:         10_000,
		SessionTTLMS:        int((30 * time.Minute).Milliseconds()),
		SweepIntervalMS:     int(time.Minute.Milliseconds()),
		DedupeSize:          100_000,
		MinSampleSpacing:    1.4,
		DefaultDifficulty:   "medium",
		MaxLeaderboardLimit: 100,
		CanvasWidth:         800,
		CanvasHeight:        600,
	}
}

// SessionTTL returns SessionTTLMS as a duration.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLMS) * time.Millisecond
}

// SweepInterval returns SweepIntervalMS as a duration.
func (c *Config) SweepInterval() time.Duration {
	return time.Duration(c.SweepIntervalMS) * time.Millisecond
}

// Validate checks ranges and returns all violations joined.
func (c *Config) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
	}

	if c.Addr == "" {
		bad("addr must not be empty")
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		bad("log_format %q must be text or json", c.LogFormat)
	}
	if c.MaxSessions < 1 {
		bad("max_sessions must be positive, got %d", c.MaxSessions)
	}
	if c.SessionTTLMS < 1 {
		bad("session_ttl_ms must be positive, got %d", c.SessionTTLMS)
	}
	if c.SweepIntervalMS < 1 {
		bad("sweep_interval_ms must be positive, got %d", c.SweepIntervalMS)
	}
	if c.DedupeSize < 1 {
		bad("dedupe_size must be positive, got %d", c.DedupeSize)
	}
	if c.MinSampleSpacing < 0 || math.IsNaN(c.MinSampleSpacing) {
		bad("min_sample_spacing must not be negative, got %v", c.MinSampleSpacing)
	}
	if c.MaxLeaderboardLimit < 1 {
		bad("max_leaderboard_limit must be positive, got %d", c.MaxLeaderboardLimit)
	}
	if !(c.CanvasWidth > 0) || !(c.CanvasHeight > 0) {
		bad("canvas size must be positive, got %vx%v", c.CanvasWidth, c.CanvasHeight)
	}
	for name, d := range c.Difficulties {
		switch strings.ToLower(name) {
		case scoring.Easy, scoring.Medium, scoring.Hard:
		default:
			bad("difficulty %q is not one of easy, medium, hard", name)
		}
		if !(d.DotRadius > 0) || !(d.SigmaScale > 0) || !(d.TimeScale > 0) {
			bad("difficulty %q needs positive dot_radius, sigma_scale and time_scale", name)
		}
	}
	return errors.Join(errs...)
}
