// Package repository holds the per-session best scores and ranks them.
package repository

import "context"

// Entry represents a ranked session best.
type Entry struct {
	Rank      int
	SessionID string
	Score     float64
}

// Store provides read/update-if-greater access to session best scores.
type Store interface {
	// UpdateBest records score for sessionID if it is strictly greater than
	// the stored best. Returns true if the store changed.
	UpdateBest(ctx context.Context, sessionID string, score float64) (bool, error)

	// Best returns the ranked best for a session.
	// Returns ErrNotFound if the session never stored a score.
	Best(ctx context.Context, sessionID string) (Entry, error)

	// TopN returns the top-N entries ordered by score desc.
	TopN(ctx context.Context, n int) ([]Entry, error)

	// Remove forgets a session. Returns false if it was unknown.
	Remove(ctx context.Context, sessionID string) bool

	// Count returns the number of sessions with a stored best.
	Count(ctx context.Context) int
}
