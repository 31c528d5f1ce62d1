// Package model contains domain models passed between layers.
package model

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/okian/circularity/internal/domain/geometry"
)

// Sentinel kinds for model validation.
var (
	ErrUnknownPointerKind = errors.New("unknown pointer event type")
	ErrInvalidCanvas      = errors.New("invalid canvas")
)

// PointerKind names the input transitions a client forwards.
type PointerKind string

// Pointer kinds, mirroring pointer/touch down, move, up and leave.
const (
	PointerDown  PointerKind = "down"
	PointerMove  PointerKind = "move"
	PointerUp    PointerKind = "up"
	PointerLeave PointerKind = "leave"
)

// ParsePointerKind accepts the wire names (case-insensitive).
func ParsePointerKind(s string) (PointerKind, error) {
	switch k := PointerKind(strings.ToLower(strings.TrimSpace(s))); k {
	case PointerDown, PointerMove, PointerUp, PointerLeave:
		return k, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPointerKind, s)
	}
}

// PointerEvent is one sampled input from the drawing surface.
type PointerEvent struct {
	Kind  PointerKind    // transition type
	Point geometry.Point // canvas-local position; ignored for up/leave
	T     float64        // client monotonic timestamp in milliseconds
}

// Canvas describes the drawing surface in CSS pixels.
type Canvas struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Validate rejects empty or non-finite canvases.
func (c Canvas) Validate() error {
	if !(c.Width > 0) || !(c.Height > 0) || math.IsInf(c.Width, 0) || math.IsInf(c.Height, 0) {
		return fmt.Errorf("%w: %gx%g", ErrInvalidCanvas, c.Width, c.Height)
	}
	return nil
}

// Center returns the target point in the middle of the canvas.
func (c Canvas) Center() geometry.Point {
	return geometry.Pt(c.Width/2, c.Height/2)
}
