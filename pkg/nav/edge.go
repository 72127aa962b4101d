// Package nav implements reactive goal seeking with a single-edge obstacle detour.
package nav

import "github.com/gwillem/tourguide/pkg/geometry"

// Pose is the robot's planar position and heading for one tick.
type Pose struct {
	Position geometry.Point
	Yaw      float64
}

// Scan holds one range reading per angular bucket (degrees).
type Scan []float64

// Command is the pair of gait amplitudes sent to the walking body.
type Command struct {
	Forward float64 // roughly [-1, 1]
	Turn    float64 // roughly [-1, 1], positive is counter-clockwise
}

// Stop is the zero command.
var Stop = Command{}

// DetectEdge scans buckets [windowStart, windowEnd) for the first sharp drop in range and
// returns the index of the near side of that drop.
//
// Pairs whose near reading is beyond maxTrust are ignored. A drop counts only when it is
// strictly greater than jump.
func DetectEdge(scan Scan, windowStart, windowEnd int, jump, maxTrust float64) (int, bool) {
	if windowStart < 0 {
		windowStart = 0
	}
	if windowEnd > len(scan)-1 {
		windowEnd = len(scan) - 1
	}
	for j := windowStart; j < windowEnd; j++ {
		if scan[j+1] > maxTrust {
			continue
		}
		if scan[j]-scan[j+1] > jump {
			return j + 1, true
		}
	}
	return -1, false
}
