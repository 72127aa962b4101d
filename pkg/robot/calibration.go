package robot

import (
	"encoding/json"
	"math"
	"os"

	"github.com/pkg/errors"
)

// Raw position of a servo at zero angle, and ticks per full turn.
const (
	rawCenter    = 2048
	ticksPerTurn = 4096
)

// MotorCalibration holds calibration data for a single motor.
type MotorCalibration struct {
	ID           int `json:"id"`
	DriveMode    int `json:"drive_mode"`
	HomingOffset int `json:"homing_offset"`
	RangeMin     int `json:"range_min"`
	RangeMax     int `json:"range_max"`
}

// Calibration holds calibration data for all motors, keyed by motor name.
type Calibration map[MotorName]MotorCalibration

// LoadCalibration loads calibration data from a JSON file.
func LoadCalibration(path string) (Calibration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read calibration file")
	}

	var cal Calibration
	if err := json.Unmarshal(data, &cal); err != nil {
		return nil, errors.Wrap(err, "parse calibration JSON")
	}
	return cal, nil
}

func (c MotorCalibration) sign() float64 {
	if c.DriveMode != 0 {
		return -1
	}
	return 1
}

// Raw converts a joint angle in radians to a servo position, clamped to the recorded range.
func (c MotorCalibration) Raw(rad float64) int {
	raw := rawCenter + c.HomingOffset + int(math.Round(c.sign()*rad*ticksPerTurn/(2*math.Pi)))
	if c.RangeMax > c.RangeMin {
		raw = max(c.RangeMin, min(c.RangeMax, raw))
	}
	return raw
}

// Radians converts a servo position to a joint angle.
func (c MotorCalibration) Radians(raw int) float64 {
	return c.sign() * float64(raw-rawCenter-c.HomingOffset) * 2 * math.Pi / ticksPerTurn
}

// MotorIDs returns the servo IDs for all motors in the calibration.
func (c Calibration) MotorIDs() []int {
	ids := make([]int, 0, len(c))
	// Use AllMotors() to ensure consistent ordering
	for _, name := range AllMotors() {
		if mc, ok := c[name]; ok {
			ids = append(ids, mc.ID)
		}
	}
	return ids
}

// ByID returns motor name and calibration for a given servo ID.
func (c Calibration) ByID(id int) (MotorName, MotorCalibration, bool) {
	for name, mc := range c {
		if mc.ID == id {
			return name, mc, true
		}
	}
	return "", MotorCalibration{}, false
}
