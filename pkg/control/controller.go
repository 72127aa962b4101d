// Package control runs the tour guide against a robot body: one tick polls the sensors,
// handles operator keys, advances the tour and steps the body.
package control

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/gwillem/tourguide/pkg/nav"
	"github.com/gwillem/tourguide/pkg/tour"
)

// Body is the robot platform: sensors, gait and the simulation or hardware step.
type Body interface {
	Pose() nav.Pose
	Scan() nav.Scan
	Accel() float64
	Drive(cmd nav.Command)
	StartGait()
	StopGait()
	Walking() bool
	PlayMotion(page int)
	// Step advances the platform by one time step.
	Step() error
	// Elapsed is the platform time advanced by Step so far.
	Elapsed() time.Duration
}

// Gesture moves the arm into and out of the show pose.
type Gesture interface {
	Raise(ctx context.Context) error
	Lower(ctx context.Context) error
}

// Timing holds the settle and hold durations of the discrete actions.
type Timing struct {
	InitSettleMS int `json:"init_settle_ms"`
	GaitSettleMS int `json:"gait_settle_ms"`
	ShowSettleMS int `json:"show_settle_ms"`
	ShowHoldMS   int `json:"show_hold_ms"`
}

// DefaultTiming returns the stock durations.
func DefaultTiming() Timing {
	return Timing{
		InitSettleMS: 200,
		GaitSettleMS: 200,
		ShowSettleMS: 200,
		ShowHoldMS:   1000,
	}
}

func ms(n int) time.Duration {
	return time.Duration(n) * time.Millisecond
}

// Config holds configuration for the controller.
type Config struct {
	Hz     int // ticks per second; <= 0 runs unpaced
	Timing Timing
	Fall   FallConfig
}

// State is a snapshot published after every tick.
type State struct {
	Tick     int
	Elapsed  time.Duration
	Pose     nav.Pose
	Command  nav.Command
	Tour     tour.State
	Route    []int
	Step     int
	Target   int
	Selected int
	Enabled  bool
	Walking  bool
	Detour   bool
	Done     bool
	Status   string
}

// Option configures a Controller.
type Option func(*Controller)

// WithClock sets the clock used for pacing and log timestamps.
func WithClock(c clock.Clock) Option {
	return func(ctrl *Controller) { ctrl.clock = c }
}

// WithLogger sets the structured logger.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(ctrl *Controller) { ctrl.logger = l }
}

// Controller manages the tour control loop.
type Controller struct {
	body   Body
	arm    Gesture
	guide  *tour.Guide
	cfg    Config
	clock  clock.Clock
	logger *zap.SugaredLogger

	mu      sync.Mutex
	running bool

	keys    chan Key
	stateCh chan State
	logCh   chan string

	ticker  *clock.Ticker
	fall    *FallDetector
	ticks   int
	pending int // exhibit chosen while the tour is stopped, -1 if none
	status  string
}

// NewController creates a controller. The arm may be nil when no show gesture is fitted.
func NewController(body Body, arm Gesture, guide *tour.Guide, cfg Config, opts ...Option) *Controller {
	c := &Controller{
		body:    body,
		arm:     arm,
		guide:   guide,
		cfg:     cfg,
		clock:   clock.New(),
		logger:  zap.NewNop().Sugar(),
		keys:    make(chan Key, 16),
		stateCh: make(chan State, 1),
		logCh:   make(chan string, 10),
		fall:    NewFallDetector(cfg.Fall),
		pending: -1,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Close releases the body and arm when they hold resources.
func (c *Controller) Close() error {
	c.mu.Lock()
	c.running = false
	c.mu.Unlock()

	var err error
	if closer, ok := c.arm.(io.Closer); ok {
		err = multierr.Append(err, errors.Wrap(closer.Close(), "close arm"))
	}
	if closer, ok := c.body.(io.Closer); ok {
		err = multierr.Append(err, errors.Wrap(closer.Close(), "close body"))
	}
	return err
}

// Press queues a key for the next tick. It reports false when the queue is full.
func (c *Controller) Press(k Key) bool {
	select {
	case c.keys <- k:
		return true
	default:
		return false
	}
}

// States returns a channel that receives state updates.
func (c *Controller) States() <-chan State {
	return c.stateCh
}

// Logs returns a channel that receives log messages.
func (c *Controller) Logs() <-chan string {
	return c.logCh
}

// Hz returns the control frequency.
func (c *Controller) Hz() int {
	return c.cfg.Hz
}

// Guide returns the tour state machine.
func (c *Controller) Guide() *tour.Guide {
	return c.guide
}

func (c *Controller) log(format string, args ...any) {
	text := fmt.Sprintf(format, args...)
	c.logger.Info(text)
	msg := fmt.Sprintf("[%s] %s", c.clock.Now().Format("15:04:05"), text)
	select {
	case c.logCh <- msg:
	default:
	}
}

// Run plays the init motion and then ticks until ctx is done.
func (c *Controller) Run(ctx context.Context) error {
	return c.RunUntil(ctx, nil)
}

// RunUntil is Run with a stop condition checked after every tick. It returns nil once
// stop reports true.
func (c *Controller) RunUntil(ctx context.Context, stop func(State) bool) error {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return errors.New("already running")
	}
	c.running = true
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.running = false
		c.mu.Unlock()
	}()

	if c.cfg.Hz > 0 {
		c.ticker = c.clock.Ticker(time.Second / time.Duration(c.cfg.Hz))
		defer func() {
			c.ticker.Stop()
			c.ticker = nil
		}()
	}

	if err := c.Init(ctx); err != nil {
		return err
	}
	c.log("Tour guide started at %d Hz", c.cfg.Hz)

	for {
		if err := c.pace(ctx); err != nil {
			c.shutdown()
			return err
		}
		s, err := c.Tick(ctx)
		if err != nil {
			c.shutdown()
			return err
		}
		if stop != nil && stop(s) {
			c.shutdown()
			return nil
		}
	}
}

// Init plays the init page and lets it settle, then starts the gait.
func (c *Controller) Init(ctx context.Context) error {
	c.body.PlayMotion(c.cfg.Fall.InitPage)
	if err := c.Wait(ctx, ms(c.cfg.Timing.InitSettleMS)); err != nil {
		return err
	}
	c.body.StartGait()
	return nil
}

func (c *Controller) pace(ctx context.Context) error {
	if c.ticker == nil {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-c.ticker.C:
		return nil
	}
}

// Wait steps the body until more than d of body time has passed. The drive command is
// left as it is.
func (c *Controller) Wait(ctx context.Context, d time.Duration) error {
	start := c.body.Elapsed()
	for c.body.Elapsed()-start <= d {
		if err := c.pace(ctx); err != nil {
			return err
		}
		if err := c.body.Step(); err != nil {
			return errors.Wrap(err, "step")
		}
	}
	return nil
}

// Tick runs one control frame and returns the published state.
func (c *Controller) Tick(ctx context.Context) (State, error) {
	for _, page := range c.fall.Observe(c.body.Accel()) {
		c.log("Fall detected, playing motion page %d", page)
		c.body.PlayMotion(page)
	}

	c.body.Drive(nav.Stop)
	manual := nav.Stop
	if err := c.drainKeys(ctx, &manual); err != nil {
		return State{}, err
	}

	var detour bool
	cmd := manual
	if c.guide.Enabled() {
		prev := c.guide.State()
		out := c.guide.Tick(tour.Input{Pose: c.body.Pose(), Scan: c.body.Scan()})
		cmd = out.Command
		detour = out.Decision != nil && out.Decision.Detour
		if out.State != prev {
			c.logger.Debugw("tour state", "from", prev, "to", out.State, "target", out.Target)
		}
		if out.Show {
			if err := c.show(ctx); err != nil {
				return State{}, err
			}
			cmd = nav.Stop
		}
	}

	c.body.Drive(cmd)
	if err := c.body.Step(); err != nil {
		return State{}, errors.Wrap(err, "step")
	}
	c.ticks++

	s := c.snapshot(cmd, detour)
	if s.Status != c.status {
		c.status = s.Status
		c.log("%s", s.Status)
	}
	c.sendState(s)
	return s, nil
}

func (c *Controller) drainKeys(ctx context.Context, manual *nav.Command) error {
	for {
		select {
		case k := <-c.keys:
			if err := c.handle(ctx, k, manual); err != nil {
				return err
			}
		default:
			return nil
		}
	}
}

func (c *Controller) handle(ctx context.Context, k Key, manual *nav.Command) error {
	switch k.Action {
	case ToggleGait:
		if c.body.Walking() {
			c.body.StopGait()
		} else {
			c.body.StartGait()
		}
		return c.Wait(ctx, ms(c.cfg.Timing.GaitSettleMS))

	case StartTour:
		c.guide.Enable()
		c.log("Navigation started")
		if c.pending >= 0 {
			exhibit := c.pending
			c.pending = -1
			c.selectExhibit(exhibit)
		}

	case StopTour:
		c.guide.Disable()
		c.log("Navigation stopped")

	case RaiseArm:
		if c.body.Walking() {
			c.body.StopGait()
			c.gesture(ctx, true)
		} else {
			c.gesture(ctx, false)
			c.body.StartGait()
		}
		return c.Wait(ctx, ms(c.cfg.Timing.GaitSettleMS))

	case Forward:
		manual.Forward = 1.0
	case Backward:
		manual.Forward = -1.0
	case Left:
		manual.Turn = 0.5
	case Right:
		manual.Turn = -0.5

	case Select:
		if !c.guide.Enabled() {
			c.pending = k.Exhibit
			c.log("Exhibit %d queued, press G to start navigation", k.Exhibit)
			return nil
		}
		c.selectExhibit(k.Exhibit)
	}
	return nil
}

func (c *Controller) selectExhibit(k int) {
	r, err := c.guide.Select(k, c.body.Pose().Position)
	switch {
	case errors.Is(err, tour.ErrDuplicateSelection):
		c.logger.Debugw("selection ignored", "exhibit", k, "route", r)
	case err != nil:
		c.log("Cannot go to exhibit %d: %v", k, err)
	default:
		c.logger.Infow("route planned", "exhibit", k, "route", r)
	}
}

func (c *Controller) gesture(ctx context.Context, raise bool) {
	if c.arm == nil {
		return
	}
	var err error
	if raise {
		err = c.arm.Raise(ctx)
	} else {
		err = c.arm.Lower(ctx)
	}
	if err != nil {
		c.log("Warning: arm gesture failed: %v", err)
	}
}

// show stops, holds the arm up, then resumes walking.
func (c *Controller) show(ctx context.Context) error {
	c.body.Drive(nav.Stop)
	c.body.StopGait()
	c.gesture(ctx, true)
	c.log("Showing exhibit %d", c.guide.Selected())
	if err := c.Wait(ctx, ms(c.cfg.Timing.ShowSettleMS)); err != nil {
		return err
	}
	if err := c.Wait(ctx, ms(c.cfg.Timing.ShowHoldMS)); err != nil {
		return err
	}
	c.gesture(ctx, false)
	c.body.StartGait()
	return c.Wait(ctx, ms(c.cfg.Timing.GaitSettleMS))
}

func (c *Controller) snapshot(cmd nav.Command, detour bool) State {
	g := c.guide
	return State{
		Tick:     c.ticks,
		Elapsed:  c.body.Elapsed(),
		Pose:     c.body.Pose(),
		Command:  cmd,
		Tour:     g.State(),
		Route:    g.Route(),
		Step:     g.Step(),
		Target:   g.Target(),
		Selected: g.Selected(),
		Enabled:  g.Enabled(),
		Walking:  c.body.Walking(),
		Detour:   detour,
		Done:     g.Done(),
		Status:   g.Status(),
	}
}

func (c *Controller) sendState(s State) {
	select {
	case c.stateCh <- s:
	default:
		// Drop old state if channel full, replace with new
		select {
		case <-c.stateCh:
		default:
		}
		c.stateCh <- s
	}
}

func (c *Controller) shutdown() {
	c.body.Drive(nav.Stop)
	c.body.StopGait()
	c.log("Tour guide stopped")
}
