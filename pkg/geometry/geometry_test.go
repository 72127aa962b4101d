package geometry

import (
	"math"
	"testing"
)

func TestDistance(t *testing.T) {
	tests := []struct {
		a, b     Point
		expected float64
	}{
		{Point{X: 0, Y: 0}, Point{X: 3, Y: 4}, 5},
		{Point{X: 1, Y: 1}, Point{X: 1, Y: 1}, 0},
		{Point{X: -2, Y: 0}, Point{X: 2, Y: 0}, 4},
	}

	for _, tt := range tests {
		got := Distance(tt.a, tt.b)
		if math.Abs(got-tt.expected) > 1e-12 {
			t.Errorf("Distance(%v, %v) = %f, want %f", tt.a, tt.b, got, tt.expected)
		}
	}
}

func TestNormalizeAngle(t *testing.T) {
	tests := []struct {
		in       float64
		expected float64
	}{
		{0, 0},
		{math.Pi, math.Pi},
		{-math.Pi, math.Pi},
		{3 * math.Pi / 2, -math.Pi / 2},
		{-3 * math.Pi / 2, math.Pi / 2},
		{2 * math.Pi, 0},
		{math.Pi / 4, math.Pi / 4},
	}

	for _, tt := range tests {
		got := NormalizeAngle(tt.in)
		if math.Abs(got-tt.expected) > 1e-12 {
			t.Errorf("NormalizeAngle(%f) = %f, want %f", tt.in, got, tt.expected)
		}
	}
}

func TestNormalizeAngle_RangeAndIdempotent(t *testing.T) {
	for x := -50.0; x <= 50.0; x += 0.0137 {
		once := NormalizeAngle(x)
		if once <= -math.Pi || once > math.Pi {
			t.Fatalf("NormalizeAngle(%f) = %f, outside (-π, π]", x, once)
		}
		if twice := NormalizeAngle(once); twice != once {
			t.Fatalf("NormalizeAngle not idempotent at %f: %f then %f", x, once, twice)
		}
	}
	for _, x := range []float64{math.Pi, -math.Pi} {
		once := NormalizeAngle(x)
		if once != math.Pi {
			t.Errorf("NormalizeAngle(%f) = %f, want π", x, once)
		}
	}
}

func TestBearingTo(t *testing.T) {
	origin := Point{}
	tests := []struct {
		to       Point
		expected float64
	}{
		{Point{X: 1, Y: 0}, 0},
		{Point{X: 0, Y: 1}, math.Pi / 2},
		{Point{X: -1, Y: 0}, math.Pi},
		{Point{X: 0, Y: -1}, -math.Pi / 2},
	}

	for _, tt := range tests {
		got := BearingTo(origin, tt.to)
		if math.Abs(got-tt.expected) > 1e-12 {
			t.Errorf("BearingTo(origin, %v) = %f, want %f", tt.to, got, tt.expected)
		}
	}
}

func TestOffset(t *testing.T) {
	p := Offset(Point{X: 1, Y: 2}, math.Pi/2, 3)
	if math.Abs(p.X-1) > 1e-12 || math.Abs(p.Y-5) > 1e-12 {
		t.Errorf("Offset = %v, want (1, 5)", p)
	}
}
