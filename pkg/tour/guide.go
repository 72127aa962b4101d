// Package tour sequences the robot through exhibits: route selection, goal seeking,
// final reorientation and the show gesture.
package tour

import (
	"fmt"
	"math"

	"github.com/pkg/errors"

	"github.com/gwillem/tourguide/pkg/geometry"
	"github.com/gwillem/tourguide/pkg/nav"
	"github.com/gwillem/tourguide/pkg/route"
)

var (
	// ErrNoRoute is returned when no reference order connects the nearest stop to the selection.
	ErrNoRoute = errors.New("no route")
	// ErrInvalidWaypoint is returned for a selection outside the waypoint table.
	ErrInvalidWaypoint = errors.New("invalid waypoint")
	// ErrDuplicateSelection is returned when the active selection is chosen again.
	ErrDuplicateSelection = errors.New("selection already active")
)

// Config holds the waypoint table and arrival tolerances.
type Config struct {
	Waypoints        []Waypoint `json:"waypoints"`
	RevolveDeadband  float64    `json:"revolve_deadband"`
	HeadingTolerance float64    `json:"heading_tolerance"`
	RevolveGain      float64    `json:"revolve_gain"`
}

// DefaultConfig returns the exhibit hall table with the standard tolerances.
func DefaultConfig() Config {
	return Config{
		Waypoints:        DefaultWaypoints(),
		RevolveDeadband:  0.2,
		HeadingTolerance: 0.1,
		RevolveGain:      0.5,
	}
}

// Validate checks the table and tolerances.
func (c Config) Validate() error {
	if len(c.Waypoints) == 0 {
		return errors.New("waypoint table is empty")
	}
	for i, w := range c.Waypoints {
		if math.IsNaN(w.Position.X) || math.IsNaN(w.Position.Y) {
			return errors.Errorf("waypoint %d: position is not a number", i)
		}
		if w.Heading.Set && (math.IsNaN(w.Heading.Value) || math.IsInf(w.Heading.Value, 0)) {
			return errors.Errorf("waypoint %d: heading must be finite or null", i)
		}
	}
	if c.RevolveDeadband <= 0 {
		return errors.New("revolve_deadband must be > 0")
	}
	if c.HeadingTolerance <= 0 {
		return errors.New("heading_tolerance must be > 0")
	}
	return nil
}

// Input is the sensor snapshot for one tick.
type Input struct {
	Pose     nav.Pose
	Scan     nav.Scan
	AutoMove bool
}

// Output is what the guide wants done on one tick.
type Output struct {
	Command  nav.Command
	Decision *nav.Decision // set while running toward a waypoint
	State    State         // state after the tick
	Show     bool          // play the show gesture now
	Target   int           // waypoint index being approached, -1 if none
}

// Guide is the tour state machine. It is driven by one Tick per control frame.
type Guide struct {
	cfg      Config
	resolver *route.Resolver
	nav      *nav.Navigator

	state    State
	route    []int
	step     int
	origin   int
	selected int
	enabled  bool
}

// New constructs a guide. The resolver must only emit indices within the waypoint table.
func New(cfg Config, resolver *route.Resolver, navigator *nav.Navigator) (*Guide, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "tour config")
	}
	if err := resolver.Validate(len(cfg.Waypoints)); err != nil {
		return nil, errors.Wrap(err, "route resolver")
	}
	return &Guide{
		cfg:      cfg,
		resolver: resolver,
		nav:      navigator,
		state:    Start,
		origin:   -1,
		selected: -1,
	}, nil
}

// Waypoints returns the configured table.
func (g *Guide) Waypoints() []Waypoint {
	return g.cfg.Waypoints
}

// State returns the current state.
func (g *Guide) State() State {
	return g.state
}

// Route returns a copy of the active route.
func (g *Guide) Route() []int {
	return append([]int(nil), g.route...)
}

// Step returns the index into the route of the waypoint being handled.
func (g *Guide) Step() int {
	return g.step
}

// Selected returns the chosen exhibit, -1 before the first selection.
func (g *Guide) Selected() int {
	return g.selected
}

// Enable lets Tick run the state machine.
func (g *Guide) Enable() {
	g.enabled = true
}

// Disable freezes the state machine; Tick then emits stop commands.
func (g *Guide) Disable() {
	g.enabled = false
}

// Enabled reports whether the tour is running.
func (g *Guide) Enabled() bool {
	return g.enabled
}

// Nearest returns the index of the waypoint closest to p.
func (g *Guide) Nearest(p geometry.Point) int {
	best, bestDist := 0, math.Inf(1)
	for i, w := range g.cfg.Waypoints {
		if d := geometry.Distance(p, w.Position); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// Select plans a route from the waypoint nearest to p to exhibit k and restarts the tour on
// it. Choosing the active exhibit again while its route is still running is ignored with
// ErrDuplicateSelection. On error the current route is kept.
func (g *Guide) Select(k int, p geometry.Point) ([]int, error) {
	if k < 0 || k >= len(g.cfg.Waypoints) {
		return nil, errors.Wrapf(ErrInvalidWaypoint, "exhibit %d not in [0, %d)", k, len(g.cfg.Waypoints))
	}
	if k == g.selected && g.state != Off {
		return g.Route(), ErrDuplicateSelection
	}

	from := g.Nearest(p)
	r := g.resolver.Resolve(from, k)
	if len(r) == 0 {
		return nil, errors.Wrapf(ErrNoRoute, "from %d to %d", from, k)
	}
	if err := g.Begin(r); err != nil {
		return nil, err
	}
	return g.Route(), nil
}

// Begin restarts the tour on an explicit route.
func (g *Guide) Begin(r []int) error {
	if len(r) == 0 {
		return ErrNoRoute
	}
	for _, idx := range r {
		if idx < 0 || idx >= len(g.cfg.Waypoints) {
			return errors.Wrapf(ErrInvalidWaypoint, "route step %d", idx)
		}
	}
	g.route = append([]int(nil), r...)
	g.step = 0
	g.state = Start
	g.origin, g.selected = r[0], r[len(r)-1]
	return nil
}

// Tick advances the state machine by one control frame.
func (g *Guide) Tick(in Input) Output {
	if !g.enabled {
		return Output{State: g.state, Target: g.Target()}
	}

	var out Output
	switch g.state {
	case Start:
		if g.step < len(g.route) {
			g.state = Running
		} else {
			g.state = Off
		}

	case Running:
		wp := g.cfg.Waypoints[g.route[g.step]]
		if geometry.Distance(in.Pose.Position, wp.Position) < g.cfg.RevolveDeadband {
			g.state = Revolve
		} else {
			d := g.nav.Decide(in.Pose, wp.Position, in.Scan)
			out.Decision = &d
			out.Command = g.nav.Drive(in.Pose, d.Aim)
		}
		if in.AutoMove {
			g.state = AutoMove
		}

	case AutoMove:
		if !in.AutoMove {
			g.state = Running
		}

	case Revolve:
		idx := g.route[g.step]
		wp := g.cfg.Waypoints[idx]
		last := g.step == len(g.route)-1
		// Only the final stop of a route is reoriented.
		if !last || !wp.Heading.Set || g.aligned(in.Pose.Yaw, wp.Heading.Value) {
			if last && idx != 0 {
				g.state = Show
			} else {
				g.step++
				g.state = Start
			}
		} else {
			out.Command = nav.Command{Turn: g.cfg.RevolveGain * geometry.NormalizeAngle(wp.Heading.Value-in.Pose.Yaw)}
		}

	case Show:
		out.Show = true
		g.step++
		g.state = Start

	case Off:
	}

	out.State = g.state
	out.Target = g.Target()
	return out
}

func (g *Guide) aligned(yaw, heading float64) bool {
	diff := math.Abs(yaw - heading)
	return diff < g.cfg.HeadingTolerance || math.Abs(diff-2*math.Pi) < g.cfg.HeadingTolerance
}

// Target returns the waypoint the route is heading for, or -1 when no route is active.
func (g *Guide) Target() int {
	if g.step < len(g.route) {
		return g.route[g.step]
	}
	return -1
}

// Done reports whether the active route has been completed.
func (g *Guide) Done() bool {
	return len(g.route) > 0 && g.state == Off && g.step >= len(g.route)
}

// Status returns a one-line description for the operator.
func (g *Guide) Status() string {
	if !g.enabled {
		return "Press G to start navigation"
	}
	if g.selected < 0 || len(g.route) == 0 {
		return "Select a target exhibit"
	}

	final := g.route[len(g.route)-1]
	if g.Done() {
		if final == 0 {
			return "Back at the home point"
		}
		return fmt.Sprintf("Arrived at exhibit %d", final)
	}

	from := g.cfg.Waypoints[g.origin].Position
	to := g.cfg.Waypoints[final].Position
	leg := fmt.Sprintf("From (%.2f, %.2f) to (%.2f, %.2f)", from.X, from.Y, to.X, to.Y)
	if final == 0 {
		return leg + ", returning to the home point"
	}
	return fmt.Sprintf("%s, heading to exhibit %d", leg, final)
}
