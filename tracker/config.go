package tracker

import (
	"fmt"
	"time"

	"go.uber.org/multierr"

	"go.viam.com/purepursuit/control"
	"go.viam.com/purepursuit/geometry"
	"go.viam.com/purepursuit/path"
	"go.viam.com/purepursuit/progress"
	"go.viam.com/purepursuit/utils"
)

// DefaultControlFrequencyHz is used when a config does not set a control frequency.
const DefaultControlFrequencyHz = 20.0

// Config configures a Tracker and the strategies it runs on every tick.
type Config struct {
	LookaheadRadius    float64                 `json:"lookahead_radius"`
	GeometryEpsilon    float64                 `json:"geometry_epsilon,omitempty"`
	ControlFrequencyHz float64                 `json:"control_frequency_hz,omitempty"`
	Preprocessor       path.PreprocessorConfig `json:"preprocessor"`
	Heading            control.HeadingConfig   `json:"heading"`
	Velocity           control.VelocityConfig  `json:"velocity"`
	Progress           progress.Config         `json:"progress"`
}

// WithDefaults returns a copy of the config with unset optional fields filled in.
func (cfg Config) WithDefaults() Config {
	if cfg.GeometryEpsilon == 0 {
		cfg.GeometryEpsilon = geometry.DefaultEpsilon
	}
	if cfg.ControlFrequencyHz == 0 {
		cfg.ControlFrequencyHz = DefaultControlFrequencyHz
	}
	return cfg
}

// ControlPeriod is the time between two ticks.
func (cfg Config) ControlPeriod() time.Duration {
	hz := cfg.ControlFrequencyHz
	if hz <= 0 {
		hz = DefaultControlFrequencyHz
	}
	return time.Duration(float64(time.Second) / hz)
}

// Validate returns an error describing every invalid field. Unset optional fields are valid.
func (cfg Config) Validate(path string) error {
	cfg = cfg.WithDefaults()
	var errs error
	if _, err := geometry.NewKernel(cfg.GeometryEpsilon); err != nil {
		errs = multierr.Append(errs, utils.NewConfigValidationError(path, err))
	}
	if !(cfg.LookaheadRadius > cfg.GeometryEpsilon) || !utils.IsFinite(cfg.LookaheadRadius) {
		errs = multierr.Append(errs, utils.NewConfigValidationPositiveFieldError(path, "lookahead_radius", cfg.LookaheadRadius))
	}
	if cfg.ControlFrequencyHz < 0 || !utils.IsFinite(cfg.ControlFrequencyHz) {
		errs = multierr.Append(errs, utils.NewConfigValidationPositiveFieldError(path, "control_frequency_hz", cfg.ControlFrequencyHz))
	}
	return multierr.Combine(
		errs,
		cfg.Preprocessor.Validate(fmt.Sprintf("%s.preprocessor", path)),
		cfg.Heading.Validate(fmt.Sprintf("%s.heading", path)),
		cfg.Velocity.Validate(fmt.Sprintf("%s.velocity", path)),
		cfg.Progress.Validate(fmt.Sprintf("%s.progress", path)),
	)
}
