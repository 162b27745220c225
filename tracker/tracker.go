// Package tracker ties the path tracking pieces together: it owns the tracking state machine and
// the current session, and on every tick turns the latest pose into a steering and velocity
// command.
package tracker

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/time/rate"

	"go.viam.com/purepursuit/control"
	"go.viam.com/purepursuit/geometry"
	"go.viam.com/purepursuit/logging"
	"go.viam.com/purepursuit/lookahead"
	"go.viam.com/purepursuit/path"
	"go.viam.com/purepursuit/progress"
)

var (
	// ErrPathRejected is returned when a path is assigned while one is already assigned or tracked.
	ErrPathRejected = errors.New("path rejected")
	// ErrNotReady is returned when a command or tick is not valid in the current state.
	ErrNotReady = errors.New("tracker not ready")
)

// ControlOutput is the command produced by one tick.
type ControlOutput struct {
	// SteeringAngle in radians, positive to the left.
	SteeringAngle float64
	// Velocity in path units per second, negative when driving backward.
	Velocity  float64
	Curvature float64
	Goal      lookahead.Goal
	Saturated bool
}

// SessionInfo describes the current tracking session.
type SessionInfo struct {
	ID        uuid.UUID
	State     State
	Direction path.DrivingDirection
	Length    float64
	Progress  float64
	Remaining float64
	Started   time.Time
	Ticks     int
}

type session struct {
	id       uuid.UUID
	path     path.Path
	started  time.Time
	lastTick time.Time
	ticks    int
}

// Tracker follows one path at a time. All methods are safe for concurrent use: commands and
// ticks are serialized, and pose updates never wait for a tick.
type Tracker struct {
	cfg    Config
	clk    clock.Clock
	logger logging.Logger
	kernel geometry.Kernel

	preprocessor path.Preprocessor
	solver       *lookahead.Solver
	heading      control.HeadingController
	velocity     control.VelocityController
	validator    progress.Validator

	saturationLog *rate.Limiter

	// mu guards everything below and serializes commands with Advance.
	mu      sync.Mutex
	state   State
	session *session
	output  ControlOutput

	poseMu  sync.RWMutex
	pose    geometry.Pose
	hasPose bool
}

// New returns an idle tracker built from cfg.
func New(cfg Config, clk clock.Clock, logger logging.Logger) (*Tracker, error) {
	if err := cfg.Validate("tracker"); err != nil {
		return nil, err
	}
	cfg = cfg.WithDefaults()

	kernel, err := geometry.NewKernel(cfg.GeometryEpsilon)
	if err != nil {
		return nil, err
	}
	preprocessor, err := path.NewPreprocessor(cfg.Preprocessor, kernel)
	if err != nil {
		return nil, err
	}
	solver, err := lookahead.NewSolver(kernel, cfg.LookaheadRadius)
	if err != nil {
		return nil, err
	}
	heading, err := control.NewHeadingController(cfg.Heading, kernel)
	if err != nil {
		return nil, err
	}
	velocity, err := control.NewVelocityController(cfg.Velocity)
	if err != nil {
		return nil, err
	}
	validator, err := progress.NewValidator(cfg.Progress, "tracker.progress")
	if err != nil {
		return nil, err
	}

	return &Tracker{
		cfg:           cfg,
		clk:           clk,
		logger:        logger,
		kernel:        kernel,
		preprocessor:  preprocessor,
		solver:        solver,
		heading:       heading,
		velocity:      velocity,
		validator:     validator,
		saturationLog: rate.NewLimiter(rate.Every(time.Second), 1),
		state:         Idle,
	}, nil
}

// Config returns the configuration the tracker was built with, defaults applied.
func (t *Tracker) Config() Config {
	return t.cfg
}

// AssignPath preprocesses p and stores it for the next Start. It is rejected while tracking or
// while another path is waiting to be started.
func (t *Tracker) AssignPath(p path.Path) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.settle()

	if t.state == Active {
		return errors.Wrap(ErrPathRejected, "a path is being tracked, stop it first")
	}
	if t.session != nil {
		return errors.Wrapf(ErrPathRejected, "path of session %s has not been started yet", t.session.id)
	}

	processed, err := t.preprocessor.Preprocess(p)
	if err != nil {
		t.logger.Warnw("path rejected by preprocessor", "error", err)
		return err
	}
	t.session = &session{id: uuid.New(), path: processed}
	t.logger.Infow("path assigned",
		"session", t.session.id,
		"segments", len(processed.Segments),
		"length", processed.Length(),
		"direction", processed.Direction)
	return nil
}

// Start begins tracking the assigned path.
func (t *Tracker) Start() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.settle()

	if t.session == nil {
		return errors.Wrap(ErrNotReady, "no path assigned")
	}
	if err := t.transition(eventStart); err != nil {
		return errors.Wrap(ErrNotReady, err.Error())
	}

	t.solver.Reset(t.session.path)
	t.heading.Reset()
	t.velocity.Reset()
	t.validator.Reset()
	t.output = ControlOutput{}
	t.session.started = t.clk.Now()
	t.logger.Infow("tracking started", "session", t.session.id)
	return nil
}

// Stop ends tracking. A path that was assigned but not started is discarded. Stop is always safe
// to call; in any other state it does nothing.
func (t *Tracker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch {
	case t.state == Active:
		t.logger.Infow("tracking stopped", "session", t.session.id, "progress", t.solver.Progress())
		t.end(eventStop)
	case t.state == Idle && t.session != nil:
		t.logger.Infow("discarding assigned path", "session", t.session.id)
		t.session = nil
	}
}

// UpdatePose records the latest vehicle pose. The newest pose wins.
func (t *Tracker) UpdatePose(pose geometry.Pose) {
	t.poseMu.Lock()
	defer t.poseMu.Unlock()
	t.pose = pose
	t.hasPose = true
}

func (t *Tracker) currentPose() (geometry.Pose, bool) {
	t.poseMu.RLock()
	defer t.poseMu.RUnlock()
	return t.pose, t.hasPose
}

// Advance runs one control tick against the latest pose. Any error other than ErrNotReady ends
// the session in Failed. Reaching the end of the path ends it in Completed and returns a zero
// velocity command.
func (t *Tracker) Advance() (ControlOutput, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != Active {
		return ControlOutput{}, errors.Wrapf(ErrNotReady, "tracker is %s", t.state)
	}
	pose, ok := t.currentPose()
	if !ok {
		return ControlOutput{}, errors.Wrap(ErrNotReady, "no pose received yet")
	}

	now := t.clk.Now()
	dt := t.cfg.ControlPeriod().Seconds()
	if !t.session.lastTick.IsZero() {
		dt = now.Sub(t.session.lastTick).Seconds()
	}
	t.session.lastTick = now
	t.session.ticks++

	goal, err := t.solver.Solve(pose.Position)
	if err != nil {
		return t.fail(err)
	}

	var steer control.HeadingOutput
	direction := t.session.path.Direction
	if !(goal.EndOfPath && t.kernel.PointsEqual(goal.Point, pose.Position)) {
		steer, err = t.heading.Compute(control.HeadingInput{
			Pose:      pose,
			Goal:      goal.Point,
			Direction: direction,
			Dt:        dt,
		})
		if err != nil {
			return t.fail(err)
		}
	}
	// Spaced on the tracker clock so simulated runs warn at simulated rates.
	if steer.Saturated && t.saturationLog.AllowN(t.clk.Now(), 1) {
		t.logger.Warnw("steering saturated", "session", t.session.id, "curvature", steer.Curvature, "pose", pose)
	}

	speed := t.velocity.Compute(control.VelocityInput{
		RemainingDistance: t.solver.Remaining(),
		Curvature:         steer.Curvature,
		Dt:                dt,
	})

	out := ControlOutput{
		SteeringAngle: steer.SteeringAngle,
		Velocity:      speed.Velocity * direction.Sign(),
		Curvature:     steer.Curvature,
		Goal:          goal,
		Saturated:     steer.Saturated,
	}
	if speed.Completed {
		out.Velocity = 0
		t.logger.Infow("path completed", "session", t.session.id, "ticks", t.session.ticks, "pose", pose)
		t.end(eventComplete)
		t.output = out
		return out, nil
	}

	if err := t.validator.Update(now, t.solver.Progress()); err != nil {
		return t.fail(err)
	}

	t.output = out
	t.logger.Debugw("tick",
		"pose", pose,
		"goal", goal.Point,
		"steering", out.SteeringAngle,
		"velocity", out.Velocity,
		"progress", t.solver.Progress())
	return out, nil
}

// SteeringAngle returns the steering angle of the last command.
func (t *Tracker) SteeringAngle() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.output.SteeringAngle
}

// LongitudinalVelocity returns the velocity of the last command.
func (t *Tracker) LongitudinalVelocity() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.output.Velocity
}

// State returns the current state. Completed, Failed and Stopped remain visible until the next
// command.
func (t *Tracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Session describes the current session. The zero ID means there is none.
func (t *Tracker) Session() SessionInfo {
	t.mu.Lock()
	defer t.mu.Unlock()
	info := SessionInfo{State: t.state}
	if t.session == nil {
		return info
	}
	info.ID = t.session.id
	info.Direction = t.session.path.Direction
	info.Length = t.session.path.Length()
	info.Remaining = info.Length
	info.Started = t.session.started
	info.Ticks = t.session.ticks
	if t.state == Active {
		info.Progress = t.solver.Progress()
		info.Remaining = t.solver.Remaining()
	}
	return info
}

func (t *Tracker) fail(err error) (ControlOutput, error) {
	t.logger.Warnw("tracking failed", "session", t.session.id, "error", err)
	t.end(eventFail)
	return ControlOutput{}, err
}

// end moves to a terminal state and drops the session.
func (t *Tracker) end(ev event) {
	if err := t.transition(ev); err != nil {
		t.logger.Errorw("invalid state transition", "error", err)
		return
	}
	t.session = nil
	t.output = ControlOutput{}
}

// settle returns a terminal state to Idle before a new command is handled.
func (t *Tracker) settle() {
	if t.state.Terminal() {
		if err := t.transition(eventReset); err != nil {
			t.logger.Errorw("invalid state transition", "error", err)
		}
	}
}

func (t *Tracker) transition(ev event) error {
	next, err := nextState(t.state, ev)
	if err != nil {
		return err
	}
	t.logger.Debugw("state transition", "from", t.state, "to", next, "event", ev)
	t.state = next
	return nil
}
