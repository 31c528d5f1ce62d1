package strokegen

import (
	"math"
	"testing"

	"github.com/okian/circularity/internal/domain/geometry"
)

func TestCircle_EvenSpacing(t *testing.T) {
	c := Point{X: 100, Y: 100}
	pts := Circle(c, 50, 12)
	if len(pts) != 12 {
		t.Fatalf("expected 12 points, got %d", len(pts))
	}
	for i, p := range pts {
		if r := geometry.Distance(p, c); math.Abs(r-50) > 1e-9 {
			t.Errorf("point %d radius %f, want 50", i, r)
		}
	}
	step := geometry.AngleBetween(geometry.Angle(pts[0], c), geometry.Angle(pts[1], c))
	if math.Abs(step-math.Pi/6) > 1e-9 {
		t.Errorf("expected step π/6, got %f", step)
	}
	// The last point must not duplicate the first.
	if geometry.Distance(pts[0], pts[11]) < 1 {
		t.Error("expected circle not to close on itself")
	}
}

func TestEllipse_Degenerate(t *testing.T) {
	if pts := Ellipse(Point{}, 1, 1, 0, 1, 0); pts != nil {
		t.Errorf("expected nil for n=0, got %v", pts)
	}
	if pts := Arc(Point{}, 2, 0, 1, 1); len(pts) != 1 || pts[0].X != 2 {
		t.Errorf("expected single point at angle 0, got %v", pts)
	}
}

func TestJitter_Deterministic(t *testing.T) {
	c := Point{X: 0, Y: 0}
	base := Circle(c, 40, 50)
	a := Jitter(base, c, 5, 42)
	b := Jitter(base, c, 5, 42)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("point %d differs between runs", i)
		}
		if r := geometry.Distance(a[i], c); r < 35-1e-9 || r > 45+1e-9 {
			t.Errorf("point %d radius %f outside jitter band", i, r)
		}
	}
}

func TestOffsetAndTimed(t *testing.T) {
	pts := Offset([]Point{{X: 1, Y: 2}}, 3, 4)
	if pts[0] != (Point{X: 4, Y: 6}) {
		t.Errorf("unexpected offset result %v", pts[0])
	}

	samples := Timed(Circle(Point{}, 10, 5), 1000, 400)
	if samples[0].T != 1000 || samples[4].T != 1400 {
		t.Errorf("unexpected timestamps %f..%f", samples[0].T, samples[4].T)
	}
}
