// Package main is the pursuit command: it validates tracker configs and runs closed-loop
// simulations of the tracker against a simulated vehicle.
package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"go.viam.com/purepursuit/config"
	"go.viam.com/purepursuit/geometry"
	"go.viam.com/purepursuit/logging"
	"go.viam.com/purepursuit/path"
	"go.viam.com/purepursuit/utils"
)

const (
	// Flags.
	flagConfig     = "config"
	flagPath       = "path"
	flagDuration   = "duration"
	flagX          = "x"
	flagY          = "y"
	flagHeadingDeg = "heading-deg"
	flagDebug      = "debug"
	flagLogFile    = "log-file"
	flagPlot       = "plot"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	configFlag := &cli.StringFlag{
		Name:     flagConfig,
		Aliases:  []string{"c"},
		Usage:    "load tracker configuration from `FILE`",
		Required: true,
	}
	return &cli.App{
		Name:  "pursuit",
		Usage: "pure pursuit path tracking tools",
		Commands: []*cli.Command{
			{
				Name:   "validate",
				Usage:  "validate a tracker config and print its effective settings",
				Flags:  []cli.Flag{configFlag},
				Action: validateAction,
			},
			{
				Name:  "simulate",
				Usage: "track a path with a simulated vehicle",
				Flags: []cli.Flag{
					configFlag,
					&cli.StringFlag{
						Name:     flagPath,
						Aliases:  []string{"p"},
						Usage:    "path to track, as `FILE` with a direction and a list of [x, y] points",
						Required: true,
					},
					&cli.DurationFlag{
						Name:  flagDuration,
						Usage: "give up after this much simulated time",
						Value: time.Minute,
					},
					&cli.Float64Flag{Name: flagX, Usage: "starting x position"},
					&cli.Float64Flag{Name: flagY, Usage: "starting y position"},
					&cli.Float64Flag{Name: flagHeadingDeg, Usage: "starting heading in degrees"},
					&cli.BoolFlag{Name: flagDebug, Aliases: []string{"vvv"}, Usage: "enable debug logging"},
					&cli.StringFlag{Name: flagLogFile, Usage: "also write logs to `FILE`"},
					&cli.StringFlag{Name: flagPlot, Usage: "draw the path and the driven trajectory to `FILE` (.png, .svg or .pdf)"},
				},
				Action: simulateAction,
			},
			{
				Name:      "schema",
				Usage:     "print the JSON schema of the attributes each strategy type accepts",
				ArgsUsage: "[heading|velocity|progress]",
				Action:    schemaAction,
			},
		},
	}
}

func validateAction(c *cli.Context) error {
	cfg, err := config.Read(c.Context, c.String(flagConfig), logging.NewLogger("pursuit"))
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, cfg.String())
	fmt.Fprintln(c.App.Writer, "config is valid")
	return nil
}

func simulateAction(c *cli.Context) error {
	cfg, err := config.Read(c.Context, c.String(flagConfig), logging.NewLogger("pursuit"))
	if err != nil {
		return err
	}
	if c.Bool(flagDebug) {
		cfg.Logging.Level = logging.DEBUG
	}
	if c.IsSet(flagLogFile) {
		cfg.Logging.File = c.String(flagLogFile)
	}
	logger := cfg.NewLogger("pursuit")
	//nolint:errcheck
	defer logger.Sync()

	p, err := path.ReadFile(c.String(flagPath))
	if err != nil {
		return err
	}
	start := geometry.NewPose(c.Float64(flagX), c.Float64(flagY), utils.DegToRad(c.Float64(flagHeadingDeg)))
	logger.Infow("starting simulation", "path", p, "start", start)

	result, err := runSimulation(c.Context, cfg, p, start, c.Duration(flagDuration), logger)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, result.Table())
	if c.IsSet(flagPlot) {
		if err := plotTrajectory(p, result.Trajectory, c.String(flagPlot)); err != nil {
			return err
		}
		logger.Infow("wrote trajectory plot", "file", c.String(flagPlot))
	}
	return nil
}
