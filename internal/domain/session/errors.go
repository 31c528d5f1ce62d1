package session

import "errors"

// Sentinel kinds for invalid transitions and inputs.
var (
	ErrNotDrawing   = errors.New("no gesture in progress")
	ErrDrawing      = errors.New("gesture in progress")
	ErrEmptyStroke  = errors.New("stroke has no points")
	ErrInvalidPoint = errors.New("point is not finite")
)
