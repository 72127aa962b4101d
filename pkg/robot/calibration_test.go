package robot

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestMotorCalibration_Raw(t *testing.T) {
	cal := MotorCalibration{
		RangeMin: 1000,
		RangeMax: 3000,
	}

	tests := []struct {
		rad      float64
		expected int
	}{
		{0, 2048},            // center
		{math.Pi / 2, 3000},  // quarter turn clamps at max
		{math.Pi / 4, 2560},  // eighth turn
		{-math.Pi / 4, 1536}, // eighth turn back
		{-math.Pi, 1000},     // clamps at min
	}

	for _, tt := range tests {
		got := cal.Raw(tt.rad)
		if got != tt.expected {
			t.Errorf("Raw(%f) = %d, want %d", tt.rad, got, tt.expected)
		}
	}
}

func TestMotorCalibration_DriveModeAndOffset(t *testing.T) {
	cal := MotorCalibration{DriveMode: 1, HomingOffset: 100}
	if got := cal.Raw(math.Pi / 4); got != 2048+100-512 {
		t.Errorf("Raw(π/4) = %d, want %d", got, 2048+100-512)
	}
	if got := cal.Radians(2148); math.Abs(got) > 1e-12 {
		t.Errorf("Radians(2148) = %f, want 0", got)
	}
}

func TestMotorCalibration_RoundTrip(t *testing.T) {
	cal := MotorCalibration{
		HomingOffset: -37,
		RangeMin:     823,
		RangeMax:     3540,
	}

	// Test round-trip: raw -> radians -> raw
	for raw := cal.RangeMin; raw <= cal.RangeMax; raw += 100 {
		rad := cal.Radians(raw)
		back := cal.Raw(rad)
		if back != raw {
			t.Errorf("Round-trip failed: %d -> %f -> %d", raw, rad, back)
		}
	}
}

func TestShowPose_WithinRange(t *testing.T) {
	cal := MotorCalibration{RangeMin: 0, RangeMax: 4095}
	for name, rad := range ShowPose() {
		raw := cal.Raw(rad)
		if math.Abs(cal.Radians(raw)-rad) > 2*math.Pi/ticksPerTurn {
			t.Errorf("%s: %f rad maps to %d, off the full-range servo", name, rad, raw)
		}
	}
}

func TestCalibration_MotorIDs(t *testing.T) {
	cal := Calibration{
		ShoulderR: MotorCalibration{ID: 1},
		ArmUpperR: MotorCalibration{ID: 2},
		ArmLowerR: MotorCalibration{ID: 3},
	}

	ids := cal.MotorIDs()
	expected := []int{1, 2, 3}

	if len(ids) != len(expected) {
		t.Fatalf("MotorIDs returned %d IDs, want %d", len(ids), len(expected))
	}

	for i, id := range ids {
		if id != expected[i] {
			t.Errorf("MotorIDs()[%d] = %d, want %d", i, id, expected[i])
		}
	}
}

func TestCalibration_ByID(t *testing.T) {
	cal := Calibration{
		ShoulderR: MotorCalibration{ID: 1, RangeMin: 100, RangeMax: 200},
		ArmLowerR: MotorCalibration{ID: 3, RangeMin: 300, RangeMax: 400},
	}

	// Test finding existing ID
	name, mc, ok := cal.ByID(1)
	if !ok {
		t.Fatal("ByID(1) returned false")
	}
	if name != ShoulderR {
		t.Errorf("ByID(1) returned name %s, want ShoulderR", name)
	}
	if mc.RangeMin != 100 {
		t.Errorf("ByID(1) returned wrong calibration: %+v", mc)
	}

	// Test non-existing ID
	_, _, ok = cal.ByID(99)
	if ok {
		t.Error("ByID(99) should return false")
	}
}

func TestLoadCalibration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "arm.json")
	data := `{"ShoulderR": {"id": 1, "range_min": 10, "range_max": 4000}}`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cal, err := LoadCalibration(path)
	if err != nil {
		t.Fatalf("LoadCalibration: %v", err)
	}
	if got := cal[ShoulderR]; got.ID != 1 || got.RangeMax != 4000 {
		t.Errorf("cal[ShoulderR] = %+v", got)
	}

	if _, err := LoadCalibration(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("LoadCalibration should fail for a missing file")
	}
}

type jointLog map[string]float64

func (j jointLog) SetJoint(name string, rad float64) { j[name] = rad }

func TestPoseArm(t *testing.T) {
	joints := jointLog{}
	arm := NewPoseArm(joints)

	if err := arm.Raise(t.Context()); err != nil {
		t.Fatal(err)
	}
	if joints["ShoulderR"] != 2.3 || joints["ArmUpperR"] != -0.68 || joints["ArmLowerR"] != -1.65 {
		t.Errorf("joints after Raise = %v", joints)
	}

	if err := arm.Lower(t.Context()); err != nil {
		t.Fatal(err)
	}
	for name, rad := range joints {
		if rad != 0 {
			t.Errorf("%s = %f after Lower, want 0", name, rad)
		}
	}
}
