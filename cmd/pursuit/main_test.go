package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fatih/color"
	"go.viam.com/test"

	"go.viam.com/purepursuit/config"
	"go.viam.com/purepursuit/geometry"
	"go.viam.com/purepursuit/logging"
	"go.viam.com/purepursuit/path"
	"go.viam.com/purepursuit/tracker"
)

const (
	testConfigFile = "../../config/data/tracker.json"
	testPathFile   = "data/s_curve.json"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	err := app.Run(append([]string{"pursuit"}, args...))
	return out.String(), err
}

func TestValidateCommand(t *testing.T) {
	out, err := run(t, "validate", "--config", testConfigFile)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldContainSubstring, "config is valid")
	test.That(t, out, test.ShouldContainSubstring, "trapezoid")

	_, err = run(t, "validate", "--config", "../../config/data/invalid.json")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "lookahead_radius")

	_, err = run(t, "validate")
	test.That(t, err, test.ShouldNotBeNil)
}

func TestSimulateCommand(t *testing.T) {
	out, err := run(t, "simulate", "--config", testConfigFile, "--path", testPathFile)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldContainSubstring, "completed")

	out, err = run(t, "simulate", "--config", testConfigFile, "--path", testPathFile, "--duration", "1s")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldContainSubstring, "timed out")

	_, err = run(t, "simulate", "--config", testConfigFile, "--path", "data/missing.json")
	test.That(t, err, test.ShouldNotBeNil)

	t.Run("plot", func(t *testing.T) {
		for _, name := range []string{"trajectory.png", "trajectory.svg"} {
			file := filepath.Join(t.TempDir(), name)
			_, err := run(t, "simulate", "--config", testConfigFile, "--path", testPathFile, "--plot", file)
			test.That(t, err, test.ShouldBeNil)
			info, err := os.Stat(file)
			test.That(t, err, test.ShouldBeNil)
			test.That(t, info.Size(), test.ShouldBeGreaterThan, 0)
		}

		_, err := run(t, "simulate", "--config", testConfigFile, "--path", testPathFile,
			"--plot", filepath.Join(t.TempDir(), "trajectory.bmp"))
		test.That(t, err, test.ShouldNotBeNil)
	})
}

func TestSchemaCommand(t *testing.T) {
	out, err := run(t, "schema")
	test.That(t, err, test.ShouldBeNil)
	var all map[string]map[string]interface{}
	test.That(t, json.Unmarshal([]byte(out), &all), test.ShouldBeNil)
	test.That(t, all, test.ShouldContainKey, "heading")
	test.That(t, all["heading"], test.ShouldContainKey, "ackermann")
	test.That(t, all["velocity"], test.ShouldContainKey, "trapezoid")
	test.That(t, all["progress"], test.ShouldContainKey, "time_window")

	out, err = run(t, "schema", "velocity")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldContainSubstring, "cruise_velocity")
	test.That(t, out, test.ShouldContainSubstring, "completion_tolerance")
	test.That(t, out, test.ShouldNotContainSubstring, "wheelbase")

	_, err = run(t, "schema", "lookahead")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "unknown config section")
}

func TestResultTableColorsState(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	noColor := color.NoColor
	color.NoColor = false
	defer func() { color.NoColor = noColor }()

	green := simulationResult{State: tracker.Completed}.Table()
	test.That(t, green, test.ShouldContainSubstring, "\x1b[32m")
	red := simulationResult{State: tracker.Failed}.Table()
	test.That(t, red, test.ShouldContainSubstring, "\x1b[31m")
	yellow := simulationResult{State: tracker.Active, TimedOut: true}.Table()
	test.That(t, yellow, test.ShouldContainSubstring, "\x1b[33m")
	test.That(t, yellow, test.ShouldContainSubstring, "timed out")

	color.NoColor = true
	test.That(t, simulationResult{State: tracker.Completed}.Table(), test.ShouldNotContainSubstring, "\x1b[")
}

func TestPlotTrajectory(t *testing.T) {
	p := path.FromPoints(geometry.NewPoint(0, 0), geometry.NewPoint(5, 0), geometry.NewPoint(5, 5))
	file := filepath.Join(t.TempDir(), "plot.png")
	test.That(t, plotTrajectory(p, []geometry.Point{geometry.NewPoint(0, 0.5), geometry.NewPoint(4, 1)}, file), test.ShouldBeNil)
	_, err := os.Stat(file)
	test.That(t, err, test.ShouldBeNil)

	err = plotTrajectory(p, nil, filepath.Join(t.TempDir(), "empty.png"))
	test.That(t, err, test.ShouldNotBeNil)
}

func TestRunSimulation(t *testing.T) {
	logger := logging.NewTestLogger(t)
	cfg, err := config.Read(context.Background(), testConfigFile, logger)
	test.That(t, err, test.ShouldBeNil)
	p, err := path.ReadFile(testPathFile)
	test.That(t, err, test.ShouldBeNil)

	result, err := runSimulation(context.Background(), cfg, p, geometry.Pose{}, time.Minute, logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, result.State, test.ShouldEqual, tracker.Completed)
	test.That(t, result.TimedOut, test.ShouldBeFalse)
	test.That(t, result.EndError, test.ShouldBeLessThan, 1.)
	test.That(t, result.Driven, test.ShouldBeGreaterThan, result.PathLength-1)
	test.That(t, result.FailSafes, test.ShouldEqual, uint64(0))
	test.That(t, result.Table(), test.ShouldContainSubstring, "distance to path end")
	test.That(t, len(result.Trajectory), test.ShouldEqual, int(result.Ticks)+1)
	test.That(t, result.Trajectory[0], test.ShouldResemble, geometry.NewPoint(0, 0))
	test.That(t, result.Trajectory[len(result.Trajectory)-1], test.ShouldResemble, result.Final.Position)

	t.Run("backward", func(t *testing.T) {
		reversed := path.FromPoints(geometry.NewPoint(0, 0), geometry.NewPoint(-8, 0), geometry.NewPoint(-12, -3)).
			WithDirection(path.Backward)
		result, err := runSimulation(context.Background(), cfg, reversed, geometry.Pose{}, time.Minute, logger)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, result.State, test.ShouldEqual, tracker.Completed)
		test.That(t, result.EndError, test.ShouldBeLessThan, 1.)
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := runSimulation(ctx, cfg, p, geometry.Pose{}, time.Minute, logger)
		test.That(t, err, test.ShouldBeError, context.Canceled)
	})
}
