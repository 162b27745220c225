// Package progress detects when a vehicle stops advancing along its path.
package progress

import (
	"time"

	"github.com/invopop/jsonschema"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"go.viam.com/purepursuit/utils"
)

// ErrProgressStalled is returned once the vehicle has failed to advance for too long.
var ErrProgressStalled = errors.New("progress along the path has stalled")

// State is the health of the progress being made.
type State int

const (
	// Healthy means the vehicle is advancing, or has not been observed long enough to tell.
	Healthy State = iota
	// Stalled means the vehicle stopped advancing. It is sticky until Reset.
	Stalled
)

func (s State) String() string {
	if s == Stalled {
		return "stalled"
	}
	return "healthy"
}

// Validator watches arclength progress over time.
type Validator interface {
	// Update records the progress at now and returns ErrProgressStalled once stalled.
	Update(now time.Time, arclength float64) error
	Reset()
	State() State
}

const (
	typeTimeWindow = "time_window"
	typeDisabled   = "disabled"
)

// AttributeSchemas maps the validator types that take attributes to the schema of those
// attributes.
var AttributeSchemas = map[string]*jsonschema.Schema{
	typeTimeWindow: jsonschema.Reflect(&TimeWindowConfig{}),
}

// Config selects and configures a validator.
type Config struct {
	Type       string             `json:"type"`
	Attributes utils.AttributeMap `json:"attributes,omitempty"`
}

// TimeWindowConfig configures the "time_window" validator.
type TimeWindowConfig struct {
	// WindowSec is how far back progress is measured.
	WindowSec float64 `json:"window_sec"`
	// MinAdvance is the arclength that must be gained over one window.
	MinAdvance float64 `json:"min_advance"`
	// StallDurationSec is how long the advance may stay below MinAdvance before stalling.
	StallDurationSec float64 `json:"stall_duration_sec"`
}

// Validate returns an error describing every invalid field.
func (cfg TimeWindowConfig) Validate(path string) error {
	var errs error
	if !(cfg.WindowSec > 0) {
		errs = multierr.Append(errs, utils.NewConfigValidationPositiveFieldError(path, "window_sec", cfg.WindowSec))
	}
	if !(cfg.MinAdvance > 0) {
		errs = multierr.Append(errs, utils.NewConfigValidationPositiveFieldError(path, "min_advance", cfg.MinAdvance))
	}
	if cfg.StallDurationSec < 0 {
		errs = multierr.Append(errs, utils.NewConfigValidationNegativeFieldError(path, "stall_duration_sec", cfg.StallDurationSec))
	}
	return errs
}

// Validate checks the validator type and its attributes.
func (cfg Config) Validate(path string) error {
	_, err := NewValidator(cfg, path)
	return err
}

// NewValidator builds the validator named by cfg.Type. An empty type disables validation.
func NewValidator(cfg Config, path string) (Validator, error) {
	switch cfg.Type {
	case typeTimeWindow:
		var conf TimeWindowConfig
		if err := cfg.Attributes.Decode(&conf); err != nil {
			return nil, utils.NewConfigValidationError(path, err)
		}
		if err := conf.Validate(path); err != nil {
			return nil, err
		}
		return newTimeWindow(conf), nil
	case typeDisabled, "":
		return disabled{}, nil
	default:
		return nil, utils.NewConfigValidationError(path, errors.Errorf("unknown progress validator type %q", cfg.Type))
	}
}

type sample struct {
	at        time.Time
	arclength float64
}

type timeWindow struct {
	window        time.Duration
	stallDuration time.Duration
	minAdvance    float64

	samples    []sample
	lowSince   time.Time
	state      State
	lastReport float64
}

func newTimeWindow(cfg TimeWindowConfig) *timeWindow {
	return &timeWindow{
		window:        time.Duration(cfg.WindowSec * float64(time.Second)),
		stallDuration: time.Duration(cfg.StallDurationSec * float64(time.Second)),
		minAdvance:    cfg.MinAdvance,
	}
}

func (tw *timeWindow) Update(now time.Time, arclength float64) error {
	if tw.state == Stalled {
		return errors.Wrapf(ErrProgressStalled, "advanced %.3f in the last %v", tw.lastReport, tw.window)
	}

	tw.samples = append(tw.samples, sample{at: now, arclength: arclength})
	cutoff := now.Add(-tw.window)
	// Keep the newest sample at or before the cutoff as the reference point.
	for len(tw.samples) > 1 && !tw.samples[1].at.After(cutoff) {
		tw.samples = tw.samples[1:]
	}
	if tw.samples[0].at.After(cutoff) {
		return nil
	}

	advance := arclength - tw.samples[0].arclength
	if advance >= tw.minAdvance {
		tw.lowSince = time.Time{}
		return nil
	}
	if tw.lowSince.IsZero() {
		tw.lowSince = now
	}
	if now.Sub(tw.lowSince) < tw.stallDuration {
		return nil
	}
	tw.state = Stalled
	tw.lastReport = advance
	return errors.Wrapf(ErrProgressStalled, "advanced %.3f in the last %v", advance, tw.window)
}

func (tw *timeWindow) Reset() {
	tw.samples = nil
	tw.lowSince = time.Time{}
	tw.state = Healthy
	tw.lastReport = 0
}

func (tw *timeWindow) State() State {
	return tw.state
}

type disabled struct{}

func (disabled) Update(time.Time, float64) error { return nil }

func (disabled) Reset() {}

func (disabled) State() State { return Healthy }
