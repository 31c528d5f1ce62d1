// Package geometry contains the planar helpers used by stroke scoring.
package geometry

import "math"

// edgeEpsilon keeps the ray-casting intercept finite for horizontal edges.
const edgeEpsilon = 1e-12

// FullTurn is one revolution in radians.
const FullTurn = 2 * math.Pi

// Point is a canvas-local coordinate. X grows right, Y grows down.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pt is a convenience constructor for Point.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Sub returns p - q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// IsFinite reports whether both coordinates are finite numbers.
func (p Point) IsFinite() bool {
	return !math.IsNaN(p.X) && !math.IsNaN(p.Y) && !math.IsInf(p.X, 0) && !math.IsInf(p.Y, 0)
}

// Distance returns the Euclidean distance between a and b.
func Distance(a, b Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// PointInPolygon reports whether point lies inside polygon using ray casting.
// The polygon is closed implicitly (last vertex joins the first). Polygons
// with fewer than three vertices never produce a crossing and report false.
func PointInPolygon(point Point, polygon []Point) bool {
	inside := false
	j := len(polygon) - 1

	for i := 0; i < len(polygon); i++ {
		xi, yi := polygon[i].X, polygon[i].Y
		xj, yj := polygon[j].X, polygon[j].Y

		if ((yi > point.Y) != (yj > point.Y)) &&
			(point.X < (xj-xi)*(point.Y-yi)/(yj-yi+edgeEpsilon)+xi) {
			inside = !inside
		}
		j = i
	}

	return inside
}

// Angle returns the polar angle of p around origin, normalised to [0, 2π).
func Angle(p, origin Point) float64 {
	a := math.Atan2(p.Y-origin.Y, p.X-origin.X)
	if a < 0 {
		a += FullTurn
	}
	return a
}

// Polar returns the radius and normalised angle of p around origin.
func Polar(p, origin Point) (radius, angle float64) {
	return Distance(p, origin), Angle(p, origin)
}

// AngleBetween returns the absolute angular difference between a and b,
// wrapped so the result never exceeds π.
func AngleBetween(a, b float64) float64 {
	diff := math.Abs(b - a)
	if diff > math.Pi {
		diff = FullTurn - diff
	}
	return diff
}
