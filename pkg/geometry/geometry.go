// Package geometry provides planar helpers shared by the navigator and simulator.
package geometry

import (
	"math"

	"github.com/golang/geo/r2"
)

// Point is a planar coordinate in the world frame.
type Point = r2.Point

// Distance returns the Euclidean distance between a and b.
func Distance(a, b Point) float64 {
	return a.Sub(b).Norm()
}

// NormalizeAngle maps an angle in radians into (-π, π].
func NormalizeAngle(a float64) float64 {
	// Remainder rounds half to even, so π stays π and -π comes back as -π.
	r := math.Remainder(a, 2*math.Pi)
	if r <= -math.Pi {
		r += 2 * math.Pi
	}
	return r
}

// BearingTo returns the world bearing from one point to another.
func BearingTo(from, to Point) float64 {
	return math.Atan2(to.Y-from.Y, to.X-from.X)
}

// Offset projects dist along bearing from p.
func Offset(p Point, bearing, dist float64) Point {
	return Point{X: p.X + dist*math.Cos(bearing), Y: p.Y + dist*math.Sin(bearing)}
}

// Deg converts degrees to radians.
func Deg(d float64) float64 {
	return d * math.Pi / 180
}
