package robot

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/gwillem/tourguide/pkg/tour"
)

func TestDefaultConfig_Valid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() = %v", err)
	}
}

func TestLoadConfigFrom_Missing(t *testing.T) {
	cfg, err := LoadConfigFrom(filepath.Join(t.TempDir(), "none.json"))
	if err != nil {
		t.Fatalf("LoadConfigFrom: %v", err)
	}
	if diff := cmp.Diff(DefaultConfig(), cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestConfig_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultConfigFile)
	cfg := DefaultConfig()
	cfg.Hz = 60
	cfg.Navigator.MaxDetourDepth = 3
	cfg.Arm = ArmConfig{
		Port:        "/dev/ttyACM0",
		Calibration: Calibration{ShoulderR: {ID: 1, RangeMin: 0, RangeMax: 4095}},
	}

	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}
	if !ConfigExists(path) {
		t.Fatal("ConfigExists = false after SaveTo")
	}

	got, err := LoadConfigFrom(path)
	if err != nil {
		t.Fatalf("LoadConfigFrom: %v", err)
	}
	if diff := cmp.Diff(cfg, got); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadConfigFrom_PartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.json")
	data := `{"hz": 10, "tour": {"waypoints": [
		{"name": "home", "x": 0, "y": 0, "heading": null},
		{"name": "only", "x": 1, "y": 0, "heading": 0}
	]}, "routes": {"templates": [[0, 1], [1, 0]], "shortcuts": []}}`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfigFrom(path)
	if err != nil {
		t.Fatalf("LoadConfigFrom: %v", err)
	}
	if cfg.Hz != 10 || len(cfg.Tour.Waypoints) != 2 {
		t.Errorf("cfg = hz %d, %d waypoints", cfg.Hz, len(cfg.Tour.Waypoints))
	}
	if cfg.Tour.Waypoints[1].Heading != tour.Facing(0) {
		t.Errorf("heading = %v, want 0", cfg.Tour.Waypoints[1].Heading)
	}
	if cfg.Tour.RevolveDeadband != 0.2 || cfg.Navigator.Clearance != 4.5 {
		t.Errorf("defaults lost: %+v %+v", cfg.Tour, cfg.Navigator)
	}
}

func TestLoadConfigFrom_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"malformed", `{"hz": `},
		{"route off the table", `{"routes": {"templates": [[0, 12]]}}`},
		{"empty window", `{"navigator": {"window_start": 50, "window_end": 50}}`},
		{"uncalibrated arm", `{"arm": {"port": "/dev/ttyUSB0"}}`},
		{"bad level", `{"log": {"level": "loud"}}`},
		{"lidar finer than the navigator", `{"sim": {"lidar_buckets": 361}}`},
		{"window past the scan", `{"navigator": {"window_end": 181}}`},
	}
	for _, tt := range tests {
		path := filepath.Join(t.TempDir(), "bad.json")
		if err := os.WriteFile(path, []byte(tt.data), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadConfigFrom(path); err == nil {
			t.Errorf("%s: LoadConfigFrom succeeded, want an error", tt.name)
		}
	}
}

func TestLoadConfigFrom_MatchingLidar(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lidar.json")
	data := `{"sim": {"lidar_buckets": 361},
		"navigator": {"bucket_center": 180, "window_start": 90, "window_end": 270}}`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfigFrom(path)
	if err != nil {
		t.Fatalf("LoadConfigFrom: %v", err)
	}
	if cfg.Navigator.BucketCenter != 180 || cfg.Sim.LidarBuckets != 361 {
		t.Errorf("lidar = %d buckets, center %d", cfg.Sim.LidarBuckets, cfg.Navigator.BucketCenter)
	}
}
