package geometry

import (
	"math"
	"testing"
)

func square(cx, cy, half float64) []Point {
	return []Point{
		{cx - half, cy - half},
		{cx + half, cy - half},
		{cx + half, cy + half},
		{cx - half, cy + half},
	}
}

func TestPointInPolygon_Square(t *testing.T) {
	poly := square(100, 100, 20)

	if !PointInPolygon(Pt(100, 100), poly) {
		t.Error("expected center to be inside square")
	}
	if PointInPolygon(Pt(200, 100), poly) {
		t.Error("expected far point to be outside square")
	}
	if PointInPolygon(Pt(100, 79), poly) {
		t.Error("expected point above square to be outside")
	}
}

func TestPointInPolygon_Degenerate(t *testing.T) {
	c := Pt(100, 100)

	if PointInPolygon(c, nil) {
		t.Error("expected empty polygon to contain nothing")
	}
	if PointInPolygon(c, []Point{c}) {
		t.Error("expected single point polygon to contain nothing")
	}
	if PointInPolygon(c, []Point{{90, 90}, {110, 110}}) {
		t.Error("expected two point polygon to contain nothing")
	}
}

func TestPointInPolygon_HorizontalEdges(t *testing.T) {
	// Edges with yi == yj must not divide by zero.
	poly := []Point{{0, 0}, {10, 0}, {10, 10}, {0, 10}}
	for _, p := range []Point{{5, 0}, {5, 10}, {5, 5}} {
		_ = PointInPolygon(p, poly)
	}
	if !PointInPolygon(Pt(5, 5), poly) {
		t.Error("expected (5,5) inside")
	}
}

func TestPointInPolygon_Concave(t *testing.T) {
	// U shape open at the top; the notch is outside.
	poly := []Point{{0, 0}, {10, 0}, {10, 30}, {20, 30}, {20, 0}, {30, 0}, {30, 40}, {0, 40}}
	if PointInPolygon(Pt(15, 10), poly) {
		t.Error("expected notch to be outside")
	}
	if !PointInPolygon(Pt(5, 20), poly) {
		t.Error("expected left arm to be inside")
	}
}

func TestDistance(t *testing.T) {
	if d := Distance(Pt(0, 0), Pt(3, 4)); d != 5 {
		t.Errorf("expected 5, got %f", d)
	}
	if d := Distance(Pt(1, 1), Pt(1, 1)); d != 0 {
		t.Errorf("expected 0, got %f", d)
	}
}

func TestAngle_Normalised(t *testing.T) {
	o := Pt(0, 0)
	cases := []struct {
		p    Point
		want float64
	}{
		{Pt(1, 0), 0},
		{Pt(0, 1), math.Pi / 2},
		{Pt(-1, 0), math.Pi},
		{Pt(0, -1), 3 * math.Pi / 2},
	}
	for _, tc := range cases {
		got := Angle(tc.p, o)
		if math.Abs(got-tc.want) > 1e-12 {
			t.Errorf("Angle(%v) = %f, want %f", tc.p, got, tc.want)
		}
		if got < 0 || got >= FullTurn {
			t.Errorf("Angle(%v) = %f out of [0, 2π)", tc.p, got)
		}
	}
}

func TestAngleBetween_Wraps(t *testing.T) {
	if d := AngleBetween(0.1, FullTurn-0.1); math.Abs(d-0.2) > 1e-12 {
		t.Errorf("expected 0.2, got %f", d)
	}
	if d := AngleBetween(1, 2); math.Abs(d-1) > 1e-12 {
		t.Errorf("expected 1, got %f", d)
	}
	if d := AngleBetween(0, math.Pi); math.Abs(d-math.Pi) > 1e-12 {
		t.Errorf("expected π, got %f", d)
	}
}

func TestPoint_IsFinite(t *testing.T) {
	if !Pt(1, 2).IsFinite() {
		t.Error("expected finite point")
	}
	if Pt(math.NaN(), 0).IsFinite() {
		t.Error("expected NaN point to be non-finite")
	}
	if Pt(0, math.Inf(1)).IsFinite() {
		t.Error("expected Inf point to be non-finite")
	}
}
