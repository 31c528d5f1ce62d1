// Package types contains common types used across the application
package types

// Entry represents a leaderboard entry: a live session's best final score.
type Entry struct {
	Rank      int     `json:"rank"`
	SessionID string  `json:"session_id"`
	Score     float64 `json:"score"`
}
