package control

import (
	"math"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"go.viam.com/purepursuit/utils"
)

// VelocityInput is what a velocity controller sees on one tick.
type VelocityInput struct {
	// RemainingDistance is the path length left to drive.
	RemainingDistance float64
	// Curvature of the steering arc, as produced by the heading controller.
	Curvature float64
	// Dt is the time since the previous tick in seconds.
	Dt float64
}

// VelocityOutput is a speed command. Velocity is never negative; the caller applies the sign of
// the driving direction.
type VelocityOutput struct {
	Velocity  float64
	Completed bool
}

// VelocityController computes the longitudinal speed along the path.
type VelocityController interface {
	Compute(in VelocityInput) VelocityOutput
	Reset()
}

// ProfileConfig holds the attributes shared by the velocity strategies.
type ProfileConfig struct {
	CruiseVelocity          float64 `json:"cruise_velocity"`
	BrakingDistance         float64 `json:"braking_distance,omitempty"`
	CurvatureSlowdownFactor float64 `json:"curvature_slowdown_factor,omitempty"`
	CompletionTolerance     float64 `json:"completion_tolerance"`
	MaxAcceleration         float64 `json:"max_acceleration,omitempty"`
}

func (cfg ProfileConfig) validate(path string, typ velocityType) error {
	var errs error
	positive := func(field string, v float64) {
		if !(v > 0) || !utils.IsFinite(v) {
			errs = multierr.Append(errs, utils.NewConfigValidationPositiveFieldError(path, field, v))
		}
	}
	nonNegative := func(field string, v float64) {
		if v < 0 || !utils.IsFinite(v) {
			errs = multierr.Append(errs, utils.NewConfigValidationNegativeFieldError(path, field, v))
		}
	}
	positive("cruise_velocity", cfg.CruiseVelocity)
	positive("completion_tolerance", cfg.CompletionTolerance)
	nonNegative("braking_distance", cfg.BrakingDistance)
	nonNegative("curvature_slowdown_factor", cfg.CurvatureSlowdownFactor)
	if typ == velocityTrapezoid {
		positive("max_acceleration", cfg.MaxAcceleration)
	} else {
		nonNegative("max_acceleration", cfg.MaxAcceleration)
	}
	if cfg.BrakingDistance > 0 && cfg.BrakingDistance < cfg.CompletionTolerance {
		errs = multierr.Append(errs, utils.NewConfigValidationError(path,
			errors.Errorf("\"braking_distance\" (%v) must not be shorter than \"completion_tolerance\" (%v)",
				cfg.BrakingDistance, cfg.CompletionTolerance)))
	}
	return errs
}

// limits applies the caps shared by every profile: completion, curvature and the floor at zero.
// It reports completion through the second return value.
func (cfg ProfileConfig) limits(in VelocityInput, v float64) (float64, bool) {
	if in.RemainingDistance <= cfg.CompletionTolerance {
		return 0, true
	}
	if cfg.CurvatureSlowdownFactor > 0 && math.Abs(in.Curvature) > 0 {
		v = math.Min(v, cfg.CurvatureSlowdownFactor/math.Abs(in.Curvature))
	}
	return math.Max(v, 0), false
}

// constantVelocity cruises at a fixed speed and ramps down linearly inside the braking distance.
type constantVelocity struct {
	cfg  ProfileConfig
	last float64
}

func (c *constantVelocity) Compute(in VelocityInput) VelocityOutput {
	v := c.cfg.CruiseVelocity
	if c.cfg.BrakingDistance > 0 && in.RemainingDistance < c.cfg.BrakingDistance {
		v = c.cfg.CruiseVelocity * in.RemainingDistance / c.cfg.BrakingDistance
	}
	v, done := c.cfg.limits(in, v)
	if done {
		c.last = 0
		return VelocityOutput{Completed: true}
	}
	if c.cfg.MaxAcceleration > 0 && in.Dt > 0 {
		v = math.Min(v, c.last+c.cfg.MaxAcceleration*in.Dt)
	}
	c.last = v
	return VelocityOutput{Velocity: v}
}

func (c *constantVelocity) Reset() {
	c.last = 0
}

// trapezoidVelocity accelerates and brakes at a bounded rate, braking along sqrt(2*a*d) so the
// vehicle can stop by the end of the path.
type trapezoidVelocity struct {
	cfg  ProfileConfig
	last float64
}

func (tv *trapezoidVelocity) Compute(in VelocityInput) VelocityOutput {
	braking := math.Sqrt(2 * tv.cfg.MaxAcceleration * math.Max(in.RemainingDistance, 0))
	v, done := tv.cfg.limits(in, math.Min(tv.cfg.CruiseVelocity, braking))
	if done {
		tv.last = 0
		return VelocityOutput{Completed: true}
	}
	if in.Dt > 0 {
		v = math.Max(utils.RateLimit(tv.last, v, tv.cfg.MaxAcceleration*in.Dt), 0)
	}
	tv.last = v
	return VelocityOutput{Velocity: v}
}

func (tv *trapezoidVelocity) Reset() {
	tv.last = 0
}
