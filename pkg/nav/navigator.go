package nav

import (
	"math"

	"github.com/pkg/errors"

	"github.com/gwillem/tourguide/pkg/geometry"
)

// Config holds the navigator thresholds. All distances are metres, angles radians.
type Config struct {
	WindowStart      int     `json:"window_start"`
	WindowEnd        int     `json:"window_end"`
	JumpThreshold    float64 `json:"jump_threshold"`
	MaxTrust         float64 `json:"max_trust"`
	GateAngle        float64 `json:"gate_angle"`
	TrustDistance    float64 `json:"trust_distance"`
	Clearance        float64 `json:"clearance"`
	ArrivalDeadband  float64 `json:"arrival_deadband"`
	ForwardAmplitude float64 `json:"forward_amplitude"`
	BucketCenter     int     `json:"bucket_center"`
	MaxDetourDepth   int     `json:"max_detour_depth"`
}

// DefaultConfig returns the thresholds tuned for the exhibit hall lidar.
func DefaultConfig() Config {
	return Config{
		WindowStart:      45,
		WindowEnd:        135,
		JumpThreshold:    0.8,
		MaxTrust:         2.0,
		GateAngle:        math.Pi / 6,
		TrustDistance:    0.8,
		Clearance:        4.5,
		ArrivalDeadband:  0.1,
		ForwardAmplitude: 1.0,
		BucketCenter:     90,
		MaxDetourDepth:   1,
	}
}

// Validate reports configuration that cannot produce sensible commands.
func (c Config) Validate() error {
	if c.WindowStart < 0 || c.WindowEnd <= c.WindowStart {
		return errors.Errorf("scan window [%d, %d) is empty", c.WindowStart, c.WindowEnd)
	}
	if c.JumpThreshold <= 0 {
		return errors.New("jump_threshold must be > 0")
	}
	if c.ArrivalDeadband < 0 {
		return errors.New("arrival_deadband must be >= 0")
	}
	if c.MaxDetourDepth < 0 {
		return errors.New("max_detour_depth must be >= 0")
	}
	return nil
}

// Decision explains what the navigator steered at on a tick.
type Decision struct {
	Aim     geometry.Point // point the command steers toward
	Edge    int            // scan bucket of the detected edge, -1 if none
	HasEdge bool
	Gated   bool // edge ignored: far reading while the goal is off to the side
	Detour  bool // Aim is an offset around the obstacle, not the goal
	Side    int  // +1 or -1 when detouring
	Depth   int  // number of detour retargets applied
}

// Navigator is a reactive bug-style planner. It keeps no state between ticks.
type Navigator struct {
	Cfg Config
}

// NewNavigator constructs a navigator with the given configuration.
func NewNavigator(cfg Config) *Navigator {
	return &Navigator{Cfg: cfg}
}

// Step computes the drive command for one tick toward target.
func (n *Navigator) Step(pose Pose, target geometry.Point, scan Scan) Command {
	d := n.Decide(pose, target, scan)
	return n.Drive(pose, d.Aim)
}

// Drive steers straight at aim, stopping inside the arrival deadband.
func (n *Navigator) Drive(pose Pose, aim geometry.Point) Command {
	if geometry.Distance(pose.Position, aim) <= n.Cfg.ArrivalDeadband {
		return Stop
	}
	heading := geometry.NormalizeAngle(geometry.BearingTo(pose.Position, aim) - pose.Yaw)
	return Command{Forward: n.Cfg.ForwardAmplitude, Turn: heading}
}

// Decide picks the point to steer at: the target itself, or an offset around the edge of
// an obstacle standing between the robot and the target.
func (n *Navigator) Decide(pose Pose, target geometry.Point, scan Scan) Decision {
	return n.decide(pose, target, scan, 0)
}

func (n *Navigator) decide(pose Pose, target geometry.Point, scan Scan, depth int) Decision {
	d := Decision{Aim: target, Edge: -1, Depth: depth}

	edge, ok := DetectEdge(scan, n.Cfg.WindowStart, n.Cfg.WindowEnd, n.Cfg.JumpThreshold, n.Cfg.MaxTrust)
	if !ok {
		return d
	}
	d.Edge, d.HasEdge = edge, true

	heading := geometry.NormalizeAngle(geometry.BearingTo(pose.Position, target) - pose.Yaw)
	if math.Abs(heading) > n.Cfg.GateAngle && scan[edge] > n.Cfg.TrustDistance {
		d.Gated = true
		return d
	}

	obstacle := n.EdgePoint(pose, edge, scan[edge])
	side, blocked := blocking(pose.Yaw, obstacle, target)
	if !blocked || depth >= n.Cfg.MaxDetourDepth {
		return d
	}

	aim := geometry.Point{
		X: obstacle.X - n.Cfg.Clearance*float64(side),
		Y: obstacle.Y + n.Cfg.Clearance*float64(side),
	}
	if depth+1 < n.Cfg.MaxDetourDepth {
		if next := n.decide(pose, aim, scan, depth+1); next.Detour {
			return next
		}
	}
	d.Aim, d.Detour, d.Side, d.Depth = aim, true, side, depth+1
	return d
}

// EdgePoint converts a scan bucket and its range into a world point.
// Bucket BucketCenter looks straight ahead; lower buckets look to the left.
func (n *Navigator) EdgePoint(pose Pose, bucket int, rng float64) geometry.Point {
	bearing := pose.Yaw + geometry.Deg(float64(n.Cfg.BucketCenter-bucket))
	return geometry.Offset(pose.Position, bearing, rng)
}

// blocking reports whether the obstacle point lies on the robot's side of the target along
// the world axis the heading is closest to, and which side to pass it on.
func blocking(yaw float64, obstacle, target geometry.Point) (int, bool) {
	t := geometry.NormalizeAngle(yaw + math.Pi/2)
	switch {
	case t > math.Pi/3 && t < 2*math.Pi/3: // facing +x
		return 1, obstacle.X < target.X
	case t > -2*math.Pi/3 && t < -math.Pi/3: // facing -x
		return -1, obstacle.X > target.X
	case t > -math.Pi/3 && t < math.Pi/3: // facing -y
		return -1, obstacle.Y > target.Y
	default: // facing +y
		return 1, obstacle.Y < target.Y
	}
}
