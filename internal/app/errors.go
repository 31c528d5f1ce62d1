package service

import "errors"

// Sentinel error kinds for the service.
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrTooManySessions = errors.New("session limit reached")
)
