package main

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/gwillem/tourguide/pkg/control"
	"github.com/gwillem/tourguide/pkg/nav"
	"github.com/gwillem/tourguide/pkg/robot"
	"github.com/gwillem/tourguide/pkg/sim"
	"github.com/gwillem/tourguide/pkg/tour"
)

// newController wires the simulated body, the show arm and the tour from the config.
func newController(cfg *robot.Config, logger *zap.SugaredLogger) (*control.Controller, error) {
	body, err := sim.New(cfg.Sim)
	if err != nil {
		return nil, err
	}

	guide, err := tour.New(cfg.Tour, cfg.Routes.Resolver(), nav.NewNavigator(cfg.Navigator))
	if err != nil {
		return nil, err
	}

	var arm control.Gesture = robot.NewPoseArm(body)
	if cfg.Arm.Port != "" {
		hw, err := robot.NewArm(cfg.Arm.Port, cfg.Arm.Calibration)
		if err != nil {
			return nil, errors.Wrapf(err, "show arm on %s", cfg.Arm.Port)
		}
		logger.Infow("show arm connected", "port", cfg.Arm.Port)
		arm = hw
	}

	return control.NewController(body, arm, guide, cfg.Control(), control.WithLogger(logger)), nil
}
