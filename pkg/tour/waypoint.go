package tour

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/gwillem/tourguide/pkg/geometry"
)

// Heading is an optional final yaw for a waypoint.
type Heading struct {
	Value float64
	Set   bool
}

// AnyHeading means the robot does not reorient on arrival.
var AnyHeading = Heading{}

// Facing returns a heading the robot turns to on arrival.
func Facing(yaw float64) Heading {
	return Heading{Value: yaw, Set: true}
}

func (h Heading) String() string {
	if !h.Set {
		return "any"
	}
	return fmt.Sprintf("%.2f", h.Value)
}

// MarshalJSON encodes an unset heading as null.
func (h Heading) MarshalJSON() ([]byte, error) {
	if !h.Set {
		return []byte("null"), nil
	}
	return json.Marshal(h.Value)
}

// UnmarshalJSON accepts a number or null.
func (h *Heading) UnmarshalJSON(b []byte) error {
	var v *float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	if v == nil {
		*h = AnyHeading
		return nil
	}
	*h = Facing(*v)
	return nil
}

// Waypoint is a tour stop. Index 0 of a table is the home point.
type Waypoint struct {
	Name     string
	Position geometry.Point
	Heading  Heading
}

type waypointJSON struct {
	Name    string  `json:"name,omitempty"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Heading Heading `json:"heading"`
}

// MarshalJSON flattens the position into x and y.
func (w Waypoint) MarshalJSON() ([]byte, error) {
	return json.Marshal(waypointJSON{Name: w.Name, X: w.Position.X, Y: w.Position.Y, Heading: w.Heading})
}

// UnmarshalJSON reads the flattened form written by MarshalJSON.
func (w *Waypoint) UnmarshalJSON(b []byte) error {
	var raw waypointJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*w = Waypoint{Name: raw.Name, Position: geometry.Point{X: raw.X, Y: raw.Y}, Heading: raw.Heading}
	return nil
}

// DefaultWaypoints returns the exhibit hall table.
func DefaultWaypoints() []Waypoint {
	return []Waypoint{
		{"home", geometry.Point{X: 3.2, Y: 3.3}, AnyHeading},
		{"exhibit 1", geometry.Point{X: 6.2, Y: 3.3}, Facing(0)},
		{"exhibit 2", geometry.Point{X: 3.5, Y: 0.3}, Facing(-math.Pi / 2)},
		{"exhibit 3", geometry.Point{X: 5.8, Y: 0.3}, Facing(0)},
		{"exhibit 4", geometry.Point{X: 5.8, Y: -3.2}, Facing(0)},
		{"exhibit 5", geometry.Point{X: 1.5, Y: -3.2}, Facing(math.Pi)},
		{"exhibit 6", geometry.Point{X: 1.5, Y: 0.3}, Facing(math.Pi)},
	}
}
