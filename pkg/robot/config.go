package robot

import (
	"encoding/json"
	"io/fs"
	"os"

	"github.com/pkg/errors"

	"github.com/gwillem/tourguide/pkg/control"
	"github.com/gwillem/tourguide/pkg/logging"
	"github.com/gwillem/tourguide/pkg/nav"
	"github.com/gwillem/tourguide/pkg/route"
	"github.com/gwillem/tourguide/pkg/sim"
	"github.com/gwillem/tourguide/pkg/tour"
)

const DefaultConfigFile = "tourguide.json"

// Config holds the tour guide configuration
type Config struct {
	Hz        int                `json:"hz"`
	Tour      tour.Config        `json:"tour"`
	Routes    route.Config       `json:"routes"`
	Navigator nav.Config         `json:"navigator"`
	Sim       sim.Config         `json:"sim"`
	Arm       ArmConfig          `json:"arm"`
	Log       logging.Config     `json:"log"`
	Timing    control.Timing     `json:"timing"`
	Fall      control.FallConfig `json:"fall"`
}

// ArmConfig holds configuration for the show arm. An empty port means the arm is simulated.
type ArmConfig struct {
	Port        string      `json:"port,omitempty"`
	Calibration Calibration `json:"calibration,omitempty"`
}

// IsCalibrated returns true if the arm has calibration data
func (a *ArmConfig) IsCalibrated() bool {
	return len(a.Calibration) > 0
}

// DefaultConfig returns the exhibit hall setup with a simulated arm.
func DefaultConfig() *Config {
	return &Config{
		Hz:        30,
		Tour:      tour.DefaultConfig(),
		Routes:    route.DefaultConfig(),
		Navigator: nav.DefaultConfig(),
		Sim:       sim.DefaultConfig(),
		Log:       logging.DefaultConfig(),
		Timing:    control.DefaultTiming(),
		Fall:      control.DefaultFallConfig(),
	}
}

// Validate checks every section and that the routes address the waypoint table.
func (c *Config) Validate() error {
	if c.Hz < 0 {
		return errors.New("hz must be >= 0")
	}
	if err := c.Tour.Validate(); err != nil {
		return errors.Wrap(err, "tour")
	}
	if err := c.Routes.Resolver().Validate(len(c.Tour.Waypoints)); err != nil {
		return errors.Wrap(err, "routes")
	}
	if err := c.Navigator.Validate(); err != nil {
		return errors.Wrap(err, "navigator")
	}
	if err := c.Sim.Validate(); err != nil {
		return errors.Wrap(err, "sim")
	}
	// The navigator reads buckets of the scan the simulated lidar produces.
	if center := (c.Sim.LidarBuckets - 1) / 2; c.Navigator.BucketCenter != center {
		return errors.Errorf("navigator bucket_center %d does not match the %d-bucket lidar (center %d)",
			c.Navigator.BucketCenter, c.Sim.LidarBuckets, center)
	}
	if c.Navigator.WindowEnd > c.Sim.LidarBuckets-1 {
		return errors.Errorf("navigator window_end %d is past the %d-bucket lidar", c.Navigator.WindowEnd, c.Sim.LidarBuckets)
	}
	if err := c.Log.Validate(); err != nil {
		return errors.Wrap(err, "log")
	}
	if c.Arm.Port != "" && !c.Arm.IsCalibrated() {
		return errors.Errorf("arm on %s is not calibrated", c.Arm.Port)
	}
	return nil
}

// Control returns the controller settings.
func (c *Config) Control() control.Config {
	return control.Config{Hz: c.Hz, Timing: c.Timing, Fall: c.Fall}
}

// LoadConfig loads configuration from the default config file
func LoadConfig() (*Config, error) {
	return LoadConfigFrom(DefaultConfigFile)
}

// LoadConfigFrom loads configuration from a specific file. Fields the file leaves out keep
// their defaults, and a missing file yields the defaults.
func LoadConfigFrom(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return cfg, nil
	case err != nil:
		return nil, errors.Wrap(err, "read config")
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "parse %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid %s", path)
	}
	return cfg, nil
}

// Save saves configuration to the default config file
func (c *Config) Save() error {
	return c.SaveTo(DefaultConfigFile)
}

// SaveTo saves configuration to a specific file
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ConfigExists returns true if the config file exists
func ConfigExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
