// Package strokegen produces synthetic strokes for tests and the drawbot
// smoke tool.
package strokegen

import (
	"math"
	"math/rand"

	"github.com/okian/circularity/internal/domain/geometry"
)

// Point is re-exported for callers that only deal with generated strokes.
type Point = geometry.Point

// Sample is a stroke point stamped with its capture time in milliseconds.
type Sample struct {
	Point
	T float64
}

// Circle returns n points evenly spaced on a circle, starting at angle 0 and
// running clockwise in canvas coordinates.
func Circle(center Point, radius float64, n int) []Point {
	return Arc(center, radius, 0, geometry.FullTurn*(1-1/float64(max(n, 1))), n)
}

// Arc returns n points evenly spaced from angle from to angle to inclusive.
func Arc(center Point, radius, from, to float64, n int) []Point {
	return Ellipse(center, radius, radius, from, to, n)
}

// Ellipse returns n points on an axis-aligned ellipse from angle from to
// angle to inclusive.
func Ellipse(center Point, rx, ry, from, to float64, n int) []Point {
	if n <= 0 {
		return nil
	}
	out := make([]Point, n)
	step := 0.0
	if n > 1 {
		step = (to - from) / float64(n-1)
	}
	for i := range out {
		a := from + step*float64(i)
		out[i] = Point{X: center.X + rx*math.Cos(a), Y: center.Y + ry*math.Sin(a)}
	}
	return out
}

// Jitter displaces every point radially around center by a uniform amount in
// [-amplitude, amplitude]. The same seed always yields the same stroke.
func Jitter(stroke []Point, center Point, amplitude float64, seed int64) []Point {
	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // deterministic noise for reproducible strokes
	out := make([]Point, len(stroke))
	for i, p := range stroke {
		r, a := geometry.Polar(p, center)
		r += (rng.Float64()*2 - 1) * amplitude
		out[i] = Point{X: center.X + r*math.Cos(a), Y: center.Y + r*math.Sin(a)}
	}
	return out
}

// Offset translates every point by (dx, dy).
func Offset(stroke []Point, dx, dy float64) []Point {
	out := make([]Point, len(stroke))
	for i, p := range stroke {
		out[i] = Point{X: p.X + dx, Y: p.Y + dy}
	}
	return out
}

// Timed spreads stroke evenly over durationMs starting at startMs.
func Timed(stroke []Point, startMs, durationMs float64) []Sample {
	out := make([]Sample, len(stroke))
	step := 0.0
	if len(stroke) > 1 {
		step = durationMs / float64(len(stroke)-1)
	}
	for i, p := range stroke {
		out[i] = Sample{Point: p, T: startMs + step*float64(i)}
	}
	return out
}
