package control

// FallConfig holds the accelerometer thresholds and the motion pages used to recover.
type FallConfig struct {
	Nominal        float64 `json:"nominal"`
	Tolerance      float64 `json:"tolerance"`
	Streak         int     `json:"streak"`
	GetUpFrontPage int     `json:"get_up_front_page"`
	GetUpBackPage  int     `json:"get_up_back_page"`
	InitPage       int     `json:"init_page"`
}

// DefaultFallConfig returns the thresholds for the stock accelerometer.
func DefaultFallConfig() FallConfig {
	return FallConfig{
		Nominal:        512,
		Tolerance:      80,
		Streak:         100,
		GetUpFrontPage: 10,
		GetUpBackPage:  11,
		InitPage:       9,
	}
}

// FallDetector counts consecutive off-nominal accelerometer readings.
type FallDetector struct {
	cfg  FallConfig
	up   int // readings below nominal: lying face down
	down int // readings above nominal: lying on the back
}

// NewFallDetector returns a detector with zeroed streaks.
func NewFallDetector(cfg FallConfig) *FallDetector {
	return &FallDetector{cfg: cfg}
}

// Observe feeds one reading and returns the pages to play when a streak runs out,
// nil otherwise.
func (f *FallDetector) Observe(accel float64) []int {
	if accel < f.cfg.Nominal-f.cfg.Tolerance {
		f.up++
	} else {
		f.up = 0
	}
	if accel > f.cfg.Nominal+f.cfg.Tolerance {
		f.down++
	} else {
		f.down = 0
	}

	switch {
	case f.up > f.cfg.Streak:
		f.up = 0
		return []int{f.cfg.GetUpFrontPage, f.cfg.InitPage}
	case f.down > f.cfg.Streak:
		f.down = 0
		return []int{f.cfg.GetUpBackPage, f.cfg.InitPage}
	}
	return nil
}
