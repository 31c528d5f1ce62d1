package repository

import "errors"

// Sentinel kinds for best-score store errors.
var (
	ErrNotFound     = errors.New("session best not found")
	ErrInvalidLimit = errors.New("invalid leaderboard limit")
	ErrInvalidScore = errors.New("score is not finite")
)
