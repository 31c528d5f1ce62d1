package scoring

import "errors"

// Sentinel kinds for difficulty selection. Score itself never fails.
var (
	ErrUnknownDifficulty = errors.New("unknown difficulty")
	ErrInvalidProfile    = errors.New("invalid difficulty profile")
)
