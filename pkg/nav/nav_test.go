package nav

import (
	"math"
	"testing"

	"github.com/gwillem/tourguide/pkg/geometry"
)

func openScan() Scan {
	s := make(Scan, 181)
	for i := range s {
		s[i] = math.Inf(1)
	}
	return s
}

func TestDetectEdge(t *testing.T) {
	base := func() Scan {
		s := make(Scan, 20)
		for i := range s {
			s[i] = 1.75
		}
		return s
	}

	tests := []struct {
		name     string
		scan     func() Scan
		expected int
		found    bool
	}{
		{"jump above threshold", func() Scan { s := base(); s[8] = 0.5; return s }, 8, true},
		{"jump equal to threshold", func() Scan { s := base(); s[7] = 1.5; s[8] = 0.5; return s }, -1, false},
		{"far reading ignored", func() Scan { s := base(); s[8] = 2.5; return s }, -1, false},
		{"first edge wins", func() Scan { s := base(); s[5] = 0.5; s[12] = 0.25; return s }, 5, true},
		{"outside window", func() Scan { s := base(); s[2] = 0.5; return s }, -1, false},
	}

	for _, tt := range tests {
		got, ok := DetectEdge(tt.scan(), 3, 15, 1.0, 2.0)
		if got != tt.expected || ok != tt.found {
			t.Errorf("%s: DetectEdge = (%d, %t), want (%d, %t)", tt.name, got, ok, tt.expected, tt.found)
		}
	}
}

func TestDetectEdge_UntrustedReadings(t *testing.T) {
	s := Scan{10, 3, 9, 2.5, 8, 2.1, 30, 2.01}
	if got, ok := DetectEdge(s, 0, len(s), 0.5, 2.0); ok {
		t.Errorf("DetectEdge over far readings = %d, want none", got)
	}
}

func TestDetectEdge_ClampsWindow(t *testing.T) {
	s := Scan{5, 5, 1}
	if got, ok := DetectEdge(s, -4, 50, 1, 2); !ok || got != 2 {
		t.Errorf("DetectEdge = (%d, %t), want (2, true)", got, ok)
	}
	if _, ok := DetectEdge(nil, 0, 10, 1, 2); ok {
		t.Error("DetectEdge on empty scan should find nothing")
	}
}

func TestStep_AtTarget(t *testing.T) {
	n := NewNavigator(DefaultConfig())
	pose := Pose{Position: geometry.Point{X: 2, Y: 3}, Yaw: 1}
	if got := n.Step(pose, pose.Position, openScan()); got != Stop {
		t.Errorf("Step at target = %+v, want stop", got)
	}
}

func TestStep_InsideDeadband(t *testing.T) {
	n := NewNavigator(DefaultConfig())
	pose := Pose{}
	if got := n.Step(pose, geometry.Point{X: 0.05, Y: 0.05}, openScan()); got != Stop {
		t.Errorf("Step inside deadband = %+v, want stop", got)
	}
}

func TestStep_StraightAhead(t *testing.T) {
	n := NewNavigator(DefaultConfig())
	got := n.Step(Pose{}, geometry.Point{X: 5, Y: 0}, openScan())
	if got.Forward != 1.0 || math.Abs(got.Turn) > 1e-12 {
		t.Errorf("Step straight ahead = %+v, want forward 1, turn 0", got)
	}
}

func TestStep_TurnsTowardTarget(t *testing.T) {
	n := NewNavigator(DefaultConfig())
	got := n.Step(Pose{Yaw: math.Pi / 2}, geometry.Point{X: 3, Y: 0}, openScan())
	if math.Abs(got.Turn+math.Pi/2) > 1e-12 {
		t.Errorf("Step turn = %f, want %f", got.Turn, -math.Pi/2)
	}
}

// wallAhead puts a surface across buckets 90..100 at range rng.
func wallAhead(rng float64) Scan {
	s := openScan()
	for i := 90; i <= 100; i++ {
		s[i] = rng
	}
	return s
}

func TestDecide_DetoursAroundBlockingObstacle(t *testing.T) {
	n := NewNavigator(DefaultConfig())
	pose := Pose{}
	target := geometry.Point{X: 10, Y: 0}

	d := n.Decide(pose, target, wallAhead(1.0))
	if !d.HasEdge || d.Edge != 90 {
		t.Fatalf("Decide edge = (%d, %t), want (90, true)", d.Edge, d.HasEdge)
	}
	if !d.Detour || d.Side != 1 {
		t.Fatalf("Decide = %+v, want a detour on side +1", d)
	}
	want := geometry.Point{X: 1 - 4.5, Y: 4.5}
	if geometry.Distance(d.Aim, want) > 1e-9 {
		t.Errorf("Decide aim = %v, want %v", d.Aim, want)
	}

	cmd := n.Step(pose, target, wallAhead(1.0))
	direct := geometry.BearingTo(pose.Position, target)
	if math.Abs(cmd.Turn-direct) < 1e-3 {
		t.Errorf("Step turn = %f, still steering at the target", cmd.Turn)
	}
	if math.Abs(cmd.Turn-geometry.BearingTo(pose.Position, want)) > 1e-9 {
		t.Errorf("Step turn = %f, want bearing to detour point", cmd.Turn)
	}
}

func TestDecide_ObstacleBeyondTarget(t *testing.T) {
	n := NewNavigator(DefaultConfig())
	target := geometry.Point{X: 0.5, Y: 0}

	d := n.Decide(Pose{}, target, wallAhead(1.0))
	if !d.HasEdge || d.Detour || d.Aim != target {
		t.Errorf("Decide = %+v, want direct to target with the edge noted", d)
	}
}

func TestDecide_GatesFarEdgeOffHeading(t *testing.T) {
	n := NewNavigator(DefaultConfig())
	target := geometry.Point{X: 0, Y: 10}

	d := n.Decide(Pose{}, target, wallAhead(1.5))
	if !d.Gated || d.Detour || d.Aim != target {
		t.Errorf("Decide = %+v, want gated and direct", d)
	}

	// A near edge is trusted even off heading.
	d = n.Decide(Pose{}, target, wallAhead(0.5))
	if d.Gated {
		t.Errorf("Decide = %+v, near edge must not be gated", d)
	}
}

func TestDecide_DetourDepthIsBounded(t *testing.T) {
	cfg := DefaultConfig()
	// A negative clearance places the detour point behind the same edge, so every retarget
	// is blocked again.
	cfg.Clearance = -1
	target := geometry.Point{X: 10, Y: 0}

	for _, depth := range []int{0, 1, 3, 8} {
		cfg.MaxDetourDepth = depth
		n := NewNavigator(cfg)
		d := n.Decide(Pose{}, target, wallAhead(0.5))
		if d.Depth != depth {
			t.Errorf("MaxDetourDepth %d: Decide depth = %d", depth, d.Depth)
		}
		if (depth > 0) != d.Detour {
			t.Errorf("MaxDetourDepth %d: Decide detour = %t", depth, d.Detour)
		}
	}
}

func TestEdgePoint(t *testing.T) {
	n := NewNavigator(DefaultConfig())
	tests := []struct {
		pose     Pose
		bucket   int
		expected geometry.Point
	}{
		{Pose{}, 90, geometry.Point{X: 2, Y: 0}},
		{Pose{}, 0, geometry.Point{X: 0, Y: 2}},
		{Pose{}, 180, geometry.Point{X: 0, Y: -2}},
		{Pose{Yaw: math.Pi / 2}, 90, geometry.Point{X: 0, Y: 2}},
		{Pose{Position: geometry.Point{X: 1, Y: 1}, Yaw: math.Pi}, 90, geometry.Point{X: -1, Y: 1}},
	}

	for _, tt := range tests {
		got := n.EdgePoint(tt.pose, tt.bucket, 2)
		if geometry.Distance(got, tt.expected) > 1e-9 {
			t.Errorf("EdgePoint(%+v, %d) = %v, want %v", tt.pose, tt.bucket, got, tt.expected)
		}
	}
}

func TestBlocking(t *testing.T) {
	obstacle := geometry.Point{X: 1, Y: 1}
	tests := []struct {
		yaw     float64
		target  geometry.Point
		side    int
		blocked bool
	}{
		{0, geometry.Point{X: 5, Y: 1}, 1, true},
		{0, geometry.Point{X: -5, Y: 1}, 1, false},
		{math.Pi, geometry.Point{X: -5, Y: 1}, -1, true},
		{-math.Pi / 2, geometry.Point{X: 1, Y: -5}, -1, true},
		{math.Pi / 2, geometry.Point{X: 1, Y: 5}, 1, true},
		{math.Pi / 2, geometry.Point{X: 1, Y: -5}, 1, false},
	}

	for _, tt := range tests {
		side, blocked := blocking(tt.yaw, obstacle, tt.target)
		if side != tt.side || blocked != tt.blocked {
			t.Errorf("blocking(%f, %v) = (%d, %t), want (%d, %t)", tt.yaw, tt.target, side, blocked, tt.side, tt.blocked)
		}
	}
}

func TestConfig_Validate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() = %v", err)
	}
	bad := DefaultConfig()
	bad.WindowEnd = bad.WindowStart
	if err := bad.Validate(); err == nil {
		t.Error("Validate should reject an empty window")
	}
}
