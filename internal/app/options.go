package service

import (
	"strings"
	"time"

	repository "github.com/okian/circularity/internal/adapters/repository"
	"github.com/okian/circularity/internal/domain/model"
	"github.com/okian/circularity/internal/domain/scoring"
	"github.com/okian/circularity/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMaxSessions caps the number of live sessions.
func WithMaxSessions(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxSessions = n
		}
	}
}

// WithSessionTTL expires sessions idle for longer than ttl.
func WithSessionTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.sessionTTL = ttl
		}
	}
}

// WithSweepInterval sets how often the janitor looks for expired sessions.
func WithSweepInterval(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.sweepInterval = d
		}
	}
}

// WithDedupeSize sets how many stroke ids are remembered.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithMinSampleSpacing sets the pointer sampling filter distance in pixels.
func WithMinSampleSpacing(px float64) Option {
	return func(s *Service) {
		if px >= 0 {
			s.minSpacing = px
		}
	}
}

// WithCatalog replaces the stock difficulty catalog.
func WithCatalog(c *scoring.Catalog) Option {
	return func(s *Service) {
		if c != nil {
			s.catalog = c
		}
	}
}

// WithDefaultDifficulty selects the profile used when a request names none.
func WithDefaultDifficulty(name string) Option {
	return func(s *Service) {
		if name = strings.ToLower(strings.TrimSpace(name)); name != "" {
			s.defaultDifficulty = name
		}
	}
}

// WithDefaultCanvas sets the canvas used when a session is created without one.
func WithDefaultCanvas(c model.Canvas) Option {
	return func(s *Service) {
		if c.Validate() == nil {
			s.defaultCanvas = c
		}
	}
}

// WithStore replaces the in-memory best-score store.
func WithStore(st repository.Store) Option {
	return func(s *Service) {
		if st != nil {
			s.best = st
		}
	}
}

// WithClock overrides time.Now, for expiry tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}
