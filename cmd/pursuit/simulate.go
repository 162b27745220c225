package main

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"go.viam.com/purepursuit/config"
	"go.viam.com/purepursuit/control"
	"go.viam.com/purepursuit/geometry"
	"go.viam.com/purepursuit/logging"
	"go.viam.com/purepursuit/node"
	"go.viam.com/purepursuit/path"
	"go.viam.com/purepursuit/sim"
	"go.viam.com/purepursuit/tracker"
	"go.viam.com/purepursuit/utils"
)

type simulationResult struct {
	State       tracker.State
	TimedOut    bool
	Ticks       uint64
	FailSafes   uint64
	Elapsed     time.Duration
	Driven      float64
	PathLength  float64
	Final       geometry.Pose
	EndError    float64
	MaxSteering float64
	Saturated   int
	// Trajectory holds the vehicle position before the first tick and after every tick.
	Trajectory []geometry.Point
}

// Table renders the result for the terminal.
func (r simulationResult) Table() string {
	state := r.State.String()
	switch {
	case r.TimedOut:
		state = color.YellowString("%s (timed out)", state)
	case r.State == tracker.Completed:
		state = color.GreenString("%s", state)
	case r.State == tracker.Failed:
		state = color.RedString("%s", state)
	}
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Result", "Value"})
	t.AppendRows([]table.Row{
		{"state", state},
		{"simulated time", r.Elapsed},
		{"ticks", r.Ticks},
		{"fail-safe commands", r.FailSafes},
		{"path length", fmt.Sprintf("%.3f", r.PathLength)},
		{"distance driven", fmt.Sprintf("%.3f", r.Driven)},
		{"final pose", r.Final},
		{"distance to path end", fmt.Sprintf("%.3f", r.EndError)},
		{"max steering (deg)", fmt.Sprintf("%.2f", utils.RadToDeg(r.MaxSteering))},
		{"saturated ticks", r.Saturated},
	})
	return t.Render()
}

// runSimulation drives a simulated vehicle along p in closed loop with a node, advancing a mock
// clock one control period per tick until the session ends or duration of simulated time passes.
func runSimulation(
	ctx context.Context,
	cfg *config.Config,
	p path.Path,
	start geometry.Pose,
	duration time.Duration,
	logger logging.Logger,
) (result simulationResult, err error) {
	var vehicleCfg control.AckermannConfig
	if err := cfg.Tracker.Heading.Attributes.Decode(&vehicleCfg); err != nil {
		return result, errors.Wrap(err, "simulation needs an ackermann heading controller")
	}
	vehicle, err := sim.NewVehicle(vehicleCfg.Wheelbase, utils.DegToRad(vehicleCfg.MaxSteeringAngleDeg), start)
	if err != nil {
		return result, err
	}

	clk := clock.NewMock()
	tr, err := tracker.New(cfg.Tracker, clk, logger.Sublogger("tracker"))
	if err != nil {
		return result, err
	}
	sink := sim.NewSink(vehicle)
	n := node.New(tr, sink, clk, logger.Sublogger("node"))
	defer func() {
		err = multierr.Combine(err, n.Close(context.Background()))
	}()

	if err := n.OnPath(p); err != nil {
		return result, err
	}
	n.OnPose(vehicle.Pose())
	result.Trajectory = append(result.Trajectory, vehicle.Pose().Position)
	if err := n.OnCommand(node.StartTracking); err != nil {
		return result, err
	}
	result.PathLength = tr.Session().Length

	period := tr.Config().ControlPeriod()
	for result.Elapsed < duration && tr.State() == tracker.Active {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		n.Tick(ctx)
		cmd, _ := sink.Latest()
		result.MaxSteering = math.Max(result.MaxSteering, math.Abs(cmd.SteeringAngle))
		if math.Abs(cmd.SteeringAngle) >= utils.DegToRad(vehicleCfg.MaxSteeringAngleDeg)-1e-9 {
			result.Saturated++
		}
		pose := sink.Drive(period.Seconds())
		result.Trajectory = append(result.Trajectory, pose.Position)
		n.OnPose(pose)
		clk.Add(period)
		result.Elapsed += period
	}

	result.State = tr.State()
	if result.State == tracker.Active {
		result.TimedOut = true
		logger.Warnw("simulation timed out before the end of the path", "duration", duration)
		if err := n.OnCommand(node.StopTracking); err != nil {
			return result, err
		}
	}
	result.Ticks = n.Ticks()
	result.FailSafes = n.FailSafes()
	result.Driven = vehicle.Odometer()
	result.Final = vehicle.Pose()
	result.EndError = geometry.Distance(result.Final.Position, p.Terminal())
	return result, nil
}
