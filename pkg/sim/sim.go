// Package sim is a kinematic stand-in for the biped: it turns drive amplitudes into motion,
// blocks on box obstacles, and synthesizes the lidar and accelerometer readings the
// controller consumes.
package sim

import (
	"math"
	"time"

	"github.com/pkg/errors"

	"github.com/gwillem/tourguide/pkg/geometry"
	"github.com/gwillem/tourguide/pkg/nav"
)

// ErrClosed is returned by Step after Close.
var ErrClosed = errors.New("simulation closed")

// UprightAccel is the accelerometer reading of a standing robot.
const UprightAccel = 512.0

// Motion pages that stand the robot back up.
const (
	pageGetUpFront = 10
	pageGetUpBack  = 11
)

// Config describes the simulated body and its environment.
type Config struct {
	TimeStepMS   int     `json:"time_step_ms"`
	MaxSpeed     float64 `json:"max_speed"`     // m/s at forward amplitude 1
	MaxTurnRate  float64 `json:"max_turn_rate"` // rad/s at turn amplitude 1
	Radius       float64 `json:"radius"`
	LidarRange   float64 `json:"lidar_range"`
	LidarBuckets int     `json:"lidar_buckets"`
	StartX       float64 `json:"start_x"`
	StartY       float64 `json:"start_y"`
	StartYaw     float64 `json:"start_yaw"`
	Obstacles    []Box   `json:"obstacles"`
}

// DefaultConfig places the robot on the home point of a walled 7.5 x 9 m hall.
func DefaultConfig() Config {
	return Config{
		TimeStepMS:   32,
		MaxSpeed:     0.3,
		MaxTurnRate:  2.0,
		Radius:       0.15,
		LidarRange:   12,
		LidarBuckets: 181,
		StartX:       3.2,
		StartY:       3.3,
		Obstacles:    Hall(0, -4.5, 7.5, 4.5, 0.1),
	}
}

// Validate checks the body parameters.
func (c Config) Validate() error {
	if c.TimeStepMS <= 0 {
		return errors.New("time_step_ms must be > 0")
	}
	if c.MaxSpeed <= 0 || c.MaxTurnRate <= 0 {
		return errors.New("max_speed and max_turn_rate must be > 0")
	}
	if c.LidarBuckets < 2 {
		return errors.New("lidar_buckets must be >= 2")
	}
	for i, b := range c.Obstacles {
		if b.MaxX < b.MinX || b.MaxY < b.MinY {
			return errors.Errorf("obstacle %d: inverted box", i)
		}
	}
	return nil
}

// TimeStep is the simulated duration of one Step.
func (c Config) TimeStep() time.Duration {
	return time.Duration(c.TimeStepMS) * time.Millisecond
}

// Body is the simulated robot. It is not safe for concurrent use.
type Body struct {
	cfg     Config
	pose    nav.Pose
	cmd     nav.Command
	walking bool
	accel   float64
	elapsed time.Duration
	pages   []int
	joints  map[string]float64
	bumps   int
	closed  bool
}

// New places a body at the configured start pose.
func New(cfg Config) (*Body, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "sim config")
	}
	return &Body{
		cfg: cfg,
		pose: nav.Pose{
			Position: geometry.Point{X: cfg.StartX, Y: cfg.StartY},
			Yaw:      geometry.NormalizeAngle(cfg.StartYaw),
		},
		accel:  UprightAccel,
		joints: make(map[string]float64),
	}, nil
}

func (b *Body) Pose() nav.Pose { return b.pose }

func (b *Body) Accel() float64 { return b.accel }

func (b *Body) Walking() bool { return b.walking }

func (b *Body) Elapsed() time.Duration { return b.elapsed }

// Drive sets the amplitudes applied on following steps.
func (b *Body) Drive(cmd nav.Command) { b.cmd = cmd }

// Command returns the amplitudes last passed to Drive.
func (b *Body) Command() nav.Command { return b.cmd }

func (b *Body) StartGait() { b.walking = true }

func (b *Body) StopGait() { b.walking = false }

// PlayMotion records the page. The get-up pages restore an upright reading.
func (b *Body) PlayMotion(page int) {
	b.pages = append(b.pages, page)
	if page == pageGetUpFront || page == pageGetUpBack {
		b.accel = UprightAccel
	}
}

// Pages returns the motion pages played so far.
func (b *Body) Pages() []int {
	return append([]int(nil), b.pages...)
}

// Tip overrides the accelerometer reading, as if the robot had fallen.
func (b *Body) Tip(accel float64) { b.accel = accel }

// SetJoint positions an arm joint.
func (b *Body) SetJoint(name string, rad float64) { b.joints[name] = rad }

// Joint returns the last position set for an arm joint.
func (b *Body) Joint(name string) float64 { return b.joints[name] }

// Bumps counts the steps on which an obstacle stopped the robot.
func (b *Body) Bumps() int { return b.bumps }

// Place teleports the robot.
func (b *Body) Place(pose nav.Pose) {
	pose.Yaw = geometry.NormalizeAngle(pose.Yaw)
	b.pose = pose
}

// Close ends the simulation.
func (b *Body) Close() error {
	b.closed = true
	return nil
}

func (b *Body) upright() bool {
	return math.Abs(b.accel-UprightAccel) < 1
}

// Step advances the world by one time step. The body only moves while the gait runs and
// the robot is upright; a move into an obstacle is dropped.
func (b *Body) Step() error {
	if b.closed {
		return ErrClosed
	}
	dt := b.cfg.TimeStep()
	if b.walking && b.upright() {
		s := dt.Seconds()
		fwd := clamp(b.cmd.Forward, -1, 1)
		turn := clamp(b.cmd.Turn, -1, 1)

		b.pose.Yaw = geometry.NormalizeAngle(b.pose.Yaw + turn*b.cfg.MaxTurnRate*s)
		next := geometry.Offset(b.pose.Position, b.pose.Yaw, fwd*b.cfg.MaxSpeed*s)
		if b.collides(next) {
			b.bumps++
		} else {
			b.pose.Position = next
		}
	}
	b.elapsed += dt
	return nil
}

func (b *Body) collides(p geometry.Point) bool {
	for _, box := range b.cfg.Obstacles {
		if box.Contains(p, b.cfg.Radius) {
			return true
		}
	}
	return false
}

// Scan casts one ray per bucket. Bucket i looks at yaw + (center - i) degrees, so the
// middle bucket looks straight ahead and bucket 0 to the left. Rays that hit nothing within
// LidarRange read +Inf.
func (b *Body) Scan() nav.Scan {
	n := b.cfg.LidarBuckets
	center := (n - 1) / 2
	scan := make(nav.Scan, n)
	for i := range scan {
		bearing := b.pose.Yaw + geometry.Deg(float64(center-i))
		scan[i] = b.cast(bearing)
	}
	return scan
}

func (b *Body) cast(bearing float64) float64 {
	best := math.Inf(1)
	for _, box := range b.cfg.Obstacles {
		if d, ok := box.Intersect(b.pose.Position, bearing); ok && d < best {
			best = d
		}
	}
	if best > b.cfg.LidarRange {
		return math.Inf(1)
	}
	return best
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
