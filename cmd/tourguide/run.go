package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/gwillem/tourguide/pkg/control"
	"github.com/gwillem/tourguide/pkg/logging"
	"github.com/gwillem/tourguide/pkg/robot"
	"github.com/gwillem/tourguide/pkg/tour"
)

type RunCommand struct {
	Hz       int    `long:"hz" description:"Control loop frequency (overrides the config file)"`
	Headless bool   `long:"headless" description:"Run without the terminal UI"`
	Fast     bool   `long:"fast" description:"Run unpaced, as fast as the simulation steps (headless)"`
	Select   []int  `long:"select" description:"Exhibit to visit; repeat to chain a tour (headless)"`
	Until    string `long:"until" description:"Stop once the tour reaches this state (headless)"`
	MaxTicks int    `long:"max-ticks" default:"50000" description:"Give up after this many ticks (headless)"`
}

func (c *RunCommand) Execute(args []string) error {
	cfg, err := robot.LoadConfigFrom(opts.Config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}
	if c.Hz > 0 {
		cfg.Hz = c.Hz
	}

	if c.Headless {
		return c.runHeadless(cfg)
	}
	return c.runTUI(cfg)
}

func (c *RunCommand) runTUI(cfg *robot.Config) error {
	logCfg := cfg.Log
	if logCfg.File == "" {
		// Keep log output off the alt screen.
		logCfg.File = "tourguide.log"
	}
	logger, closeLog, err := logging.New(logCfg)
	if err != nil {
		return err
	}
	defer closeLog()

	ctrl, err := newController(cfg, logger)
	if err != nil {
		return err
	}
	defer ctrl.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := startController(ctx, ctrl, logger)
	defer func() {
		cancel()
		<-done
	}()

	p := tea.NewProgram(initialRunModel(ctrl, cfg.Tour.Waypoints), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return errors.Wrap(err, "run terminal UI")
	}
	return nil
}

// startController runs ctrl until ctx ends. The returned channel closes once the loop has
// stopped touching the body.
func startController(ctx context.Context, ctrl *control.Controller, logger *zap.SugaredLogger) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := ctrl.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Errorw("controller stopped", "error", err)
		}
	}()
	return done
}

func (c *RunCommand) runHeadless(cfg *robot.Config) error {
	if c.Fast {
		cfg.Hz = 0
	}
	var until tour.State
	if c.Until != "" {
		s, err := tour.ParseState(c.Until)
		if err != nil {
			return err
		}
		until = s
	}
	if len(c.Select) == 0 {
		return errors.New("headless run needs at least one --select")
	}
	for _, k := range c.Select {
		if k < 0 || k >= len(cfg.Tour.Waypoints) {
			return errors.Errorf("--select %d: no such waypoint", k)
		}
	}

	logger, closeLog, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	defer closeLog()

	ctrl, err := newController(cfg, logger)
	if err != nil {
		return err
	}
	defer ctrl.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	queue := append([]int(nil), c.Select...)
	next := func() {
		if len(queue) == 0 {
			return
		}
		ctrl.Press(control.SelectKey(queue[0]))
		queue = queue[1:]
	}
	ctrl.Press(control.Key{Action: control.StartTour})
	next()

	var last control.State
	err = ctrl.RunUntil(ctx, func(s control.State) bool {
		last = s
		switch {
		case until != 0 && s.Tour == until:
			return true
		case s.Tick >= c.MaxTicks:
			return true
		case s.Done && len(queue) > 0:
			next()
		case s.Done:
			return until == 0
		}
		return false
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	logger.Infow("run finished",
		"ticks", last.Tick,
		"elapsed", last.Elapsed,
		"state", last.Tour,
		"x", last.Pose.Position.X,
		"y", last.Pose.Position.Y,
		"yaw", last.Pose.Yaw,
	)
	fmt.Println(last.Status)
	if last.Tick >= c.MaxTicks && !last.Done {
		return errors.Errorf("gave up after %d ticks in state %s", last.Tick, last.Tour)
	}
	return nil
}
