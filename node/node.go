// Package node drives a tracker from the outside world: it accepts paths, poses and commands from
// whatever transport delivers them, runs the periodic control loop and publishes every command to
// a sink. Whenever nothing is being tracked it publishes a fail-safe stop command.
package node

import (
	"context"
	"fmt"
	"sync"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/atomic"

	"go.viam.com/purepursuit/geometry"
	"go.viam.com/purepursuit/logging"
	"go.viam.com/purepursuit/path"
	"go.viam.com/purepursuit/tracker"
	"go.viam.com/purepursuit/utils"
)

// TrackingCommand asks the node to start or stop tracking.
type TrackingCommand int

const (
	// StartTracking starts tracking the assigned path.
	StartTracking TrackingCommand = iota + 1
	// StopTracking stops tracking and discards any assigned path.
	StopTracking
)

func (c TrackingCommand) String() string {
	switch c {
	case StartTracking:
		return "start_tracking"
	case StopTracking:
		return "stop_tracking"
	default:
		return fmt.Sprintf("TrackingCommand(%d)", int(c))
	}
}

// ControlSink receives the commands produced by the control loop.
type ControlSink interface {
	SendControl(ctx context.Context, steeringAngle, velocity float64) error
}

// Node runs a tracker's control loop.
type Node struct {
	tracker *tracker.Tracker
	sink    ControlSink
	clk     clock.Clock
	logger  logging.Logger

	mu      sync.Mutex
	workers utils.StoppableWorkers

	ticks     atomic.Uint64
	failSafes atomic.Uint64
}

// New returns a node for tr. Call Start to run the control loop.
func New(tr *tracker.Tracker, sink ControlSink, clk clock.Clock, logger logging.Logger) *Node {
	return &Node{tracker: tr, sink: sink, clk: clk, logger: logger}
}

// OnPath assigns a newly planned path. A path that was assigned but not started is replaced;
// a path arriving while tracking is rejected.
func (n *Node) OnPath(p path.Path) error {
	if p.IsEmpty() {
		n.logger.Warn("received an empty path, ignoring it")
		return path.ErrEmptyPath
	}
	if n.tracker.State() == tracker.Active {
		n.logger.Warn("received a path while tracking, ignoring it")
		return errors.Wrap(tracker.ErrPathRejected, "tracking in progress")
	}
	if info := n.tracker.Session(); info.State == tracker.Idle && info.ID != uuid.Nil {
		n.logger.Infow("replacing path that was never started", "session", info.ID)
		n.tracker.Stop()
	}
	if err := n.tracker.AssignPath(p); err != nil {
		n.logger.Warnw("could not assign path", "error", err)
		return err
	}
	return nil
}

// OnPose forwards a localization update.
func (n *Node) OnPose(pose geometry.Pose) {
	n.tracker.UpdatePose(pose)
}

// OnCommand handles a start or stop request.
func (n *Node) OnCommand(cmd TrackingCommand) error {
	switch cmd {
	case StartTracking:
		if n.tracker.State() == tracker.Active {
			n.logger.Warn("already tracking a path, ignoring start")
			return errors.Wrap(tracker.ErrNotReady, "already tracking")
		}
		if err := n.tracker.Start(); err != nil {
			n.logger.Warnw("cannot start tracking", "error", err)
			return err
		}
		return nil
	case StopTracking:
		if n.tracker.State() != tracker.Active {
			n.logger.Warn("stop requested but nothing is being tracked")
		}
		n.tracker.Stop()
		return nil
	default:
		return errors.Errorf("unknown tracking command %v", cmd)
	}
}

// Tick runs one control cycle and publishes its command.
func (n *Node) Tick(ctx context.Context) {
	n.ticks.Inc()
	if n.tracker.State() != tracker.Active {
		n.sendFailSafe(ctx)
		return
	}

	out, err := n.tracker.Advance()
	switch {
	case errors.Is(err, tracker.ErrNotReady):
		n.logger.Debugw("skipping tick", "reason", err)
		n.sendFailSafe(ctx)
	case err != nil:
		n.logger.Errorw("tracking failed, stopping the vehicle", "error", err)
		n.sendFailSafe(ctx)
	default:
		n.send(ctx, out.SteeringAngle, out.Velocity)
		if n.tracker.State() == tracker.Completed {
			n.logger.Info("reached the end of the path")
		}
	}
}

// Start runs Tick at the tracker's control frequency until Close.
func (n *Node) Start() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.workers != nil {
		return errors.New("control loop already running")
	}
	period := n.tracker.Config().ControlPeriod()
	n.logger.Infow("starting control loop", "period", period)
	n.workers = utils.NewStoppableWorkers(utils.TickingWorker(n.clk, period, n.Tick))
	return nil
}

// Close stops the control loop, stops tracking and leaves the vehicle with a fail-safe command.
func (n *Node) Close(ctx context.Context) error {
	n.mu.Lock()
	if n.workers != nil {
		n.workers.Stop()
		n.workers = nil
	}
	n.mu.Unlock()

	n.tracker.Stop()
	n.failSafes.Inc()
	return errors.Wrap(n.sink.SendControl(ctx, 0, 0), "sending fail-safe command on close")
}

// Ticks returns how many control cycles have run.
func (n *Node) Ticks() uint64 {
	return n.ticks.Load()
}

// FailSafes returns how many fail-safe commands were published.
func (n *Node) FailSafes() uint64 {
	return n.failSafes.Load()
}

func (n *Node) sendFailSafe(ctx context.Context) {
	n.failSafes.Inc()
	n.send(ctx, 0, 0)
}

func (n *Node) send(ctx context.Context, steeringAngle, velocity float64) {
	if err := n.sink.SendControl(ctx, steeringAngle, velocity); err != nil {
		n.logger.Warnw("failed to publish control command", "error", err)
	}
}
