package sim

import (
	"math"

	"github.com/gwillem/tourguide/pkg/geometry"
)

// Box is an axis-aligned obstacle.
type Box struct {
	MinX float64 `json:"min_x"`
	MinY float64 `json:"min_y"`
	MaxX float64 `json:"max_x"`
	MaxY float64 `json:"max_y"`
}

// Contains reports whether p lies within margin of the box.
func (b Box) Contains(p geometry.Point, margin float64) bool {
	return p.X >= b.MinX-margin && p.X <= b.MaxX+margin &&
		p.Y >= b.MinY-margin && p.Y <= b.MaxY+margin
}

// Intersect returns the distance along a ray from origin at bearing to the box surface.
// A ray starting inside the box hits at distance 0.
func (b Box) Intersect(origin geometry.Point, bearing float64) (float64, bool) {
	dx, dy := math.Cos(bearing), math.Sin(bearing)
	tmin, tmax := math.Inf(-1), math.Inf(1)

	for _, ax := range [2]struct{ o, d, lo, hi float64 }{
		{origin.X, dx, b.MinX, b.MaxX},
		{origin.Y, dy, b.MinY, b.MaxY},
	} {
		if math.Abs(ax.d) < 1e-12 {
			if ax.o < ax.lo || ax.o > ax.hi {
				return 0, false
			}
			continue
		}
		t1, t2 := (ax.lo-ax.o)/ax.d, (ax.hi-ax.o)/ax.d
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = math.Max(tmin, t1)
		tmax = math.Min(tmax, t2)
	}

	if tmax < 0 || tmin > tmax {
		return 0, false
	}
	return math.Max(tmin, 0), true
}

// Hall returns four walls of the given thickness enclosing the rectangle.
func Hall(minX, minY, maxX, maxY, wall float64) []Box {
	return []Box{
		{MinX: minX - wall, MinY: minY - wall, MaxX: maxX + wall, MaxY: minY},
		{MinX: minX - wall, MinY: maxY, MaxX: maxX + wall, MaxY: maxY + wall},
		{MinX: minX - wall, MinY: minY, MaxX: minX, MaxY: maxY},
		{MinX: maxX, MinY: minY, MaxX: maxX + wall, MaxY: maxY},
	}
}
