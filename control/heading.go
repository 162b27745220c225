package control

import (
	"math"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"go.viam.com/purepursuit/geometry"
	"go.viam.com/purepursuit/path"
	"go.viam.com/purepursuit/utils"
)

// HeadingInput is what a heading controller sees on one tick.
type HeadingInput struct {
	Pose      geometry.Pose
	Goal      geometry.Point
	Direction path.DrivingDirection
	// Dt is the time since the previous tick in seconds. Zero disables rate limiting for the tick.
	Dt float64
}

// HeadingOutput is the steering decision for one tick.
type HeadingOutput struct {
	// Curvature of the arc through the goal, positive to the left of the direction of travel.
	Curvature float64
	// SteeringAngle in radians, positive to the left of the vehicle's front.
	SteeringAngle float64
	// Saturated is set when the steering angle was clamped to its limit.
	Saturated bool
}

// HeadingController turns a goal point into a steering command.
type HeadingController interface {
	Compute(in HeadingInput) (HeadingOutput, error)
	Reset()
}

// AckermannConfig configures the pure pursuit steering law for a front steered vehicle.
type AckermannConfig struct {
	Wheelbase                float64 `json:"wheelbase"`
	MaxSteeringAngleDeg      float64 `json:"max_steering_angle_deg"`
	MaxSteeringRateDegPerSec float64 `json:"max_steering_rate_deg_per_sec,omitempty"`
	DeadZoneDeg              float64 `json:"dead_zone_deg,omitempty"`
	FilterWeight             float64 `json:"filter_weight,omitempty"`
}

// Validate returns an error describing every invalid field.
func (cfg AckermannConfig) Validate(path string) error {
	var errs error
	if !(cfg.Wheelbase > 0) || !utils.IsFinite(cfg.Wheelbase) {
		errs = multierr.Append(errs, utils.NewConfigValidationPositiveFieldError(path, "wheelbase", cfg.Wheelbase))
	}
	if !(cfg.MaxSteeringAngleDeg > 0) || cfg.MaxSteeringAngleDeg >= 90 {
		errs = multierr.Append(errs, utils.NewConfigValidationError(path,
			errors.Errorf("\"max_steering_angle_deg\" must be in (0, 90), got %v", cfg.MaxSteeringAngleDeg)))
	}
	if cfg.MaxSteeringRateDegPerSec < 0 {
		errs = multierr.Append(errs,
			utils.NewConfigValidationNegativeFieldError(path, "max_steering_rate_deg_per_sec", cfg.MaxSteeringRateDegPerSec))
	}
	if cfg.DeadZoneDeg < 0 {
		errs = multierr.Append(errs, utils.NewConfigValidationNegativeFieldError(path, "dead_zone_deg", cfg.DeadZoneDeg))
	} else if cfg.MaxSteeringAngleDeg > 0 && cfg.DeadZoneDeg >= cfg.MaxSteeringAngleDeg {
		errs = multierr.Append(errs, utils.NewConfigValidationError(path,
			errors.Errorf("\"dead_zone_deg\" (%v) must be below \"max_steering_angle_deg\" (%v)",
				cfg.DeadZoneDeg, cfg.MaxSteeringAngleDeg)))
	}
	if cfg.FilterWeight < 0 || cfg.FilterWeight > 1 {
		errs = multierr.Append(errs, utils.NewConfigValidationError(path,
			errors.Errorf("\"filter_weight\" must be in [0, 1], got %v", cfg.FilterWeight)))
	}
	return errs
}

type ackermann struct {
	kernel     geometry.Kernel
	wheelbase  float64
	maxAngle   float64
	maxRate    float64
	deadZone   float64
	filter     averagingFilter
	lastOutput float64
}

func newAckermann(cfg AckermannConfig, kernel geometry.Kernel) *ackermann {
	return &ackermann{
		kernel:    kernel,
		wheelbase: cfg.Wheelbase,
		maxAngle:  utils.DegToRad(cfg.MaxSteeringAngleDeg),
		maxRate:   utils.DegToRad(cfg.MaxSteeringRateDegPerSec),
		deadZone:  utils.DegToRad(cfg.DeadZoneDeg),
		filter:    averagingFilter{weight: cfg.FilterWeight},
	}
}

// Compute applies the pure pursuit law. The look angle alpha is measured from the direction of
// travel, so when reversing the heading is turned around and the resulting steering angle negated.
func (a *ackermann) Compute(in HeadingInput) (HeadingOutput, error) {
	toGoal := in.Goal.Sub(in.Pose.Position)
	distance := toGoal.Norm()
	if !utils.IsFinite(distance, in.Pose.Heading) {
		return HeadingOutput{}, errors.Wrapf(geometry.ErrDegenerateGeometry, "pose %v or goal %v is not finite", in.Pose, in.Goal)
	}
	if distance <= a.kernel.Epsilon {
		return HeadingOutput{}, errors.Wrapf(geometry.ErrDegenerateGeometry, "goal %v coincides with the vehicle", in.Goal)
	}

	heading := in.Pose.Heading
	if in.Direction == path.Backward {
		heading += math.Pi
	}
	alpha := utils.NormalizeAngle(math.Atan2(toGoal.Y, toGoal.X) - heading)
	curvature := 2 * math.Sin(alpha) / distance

	steering := math.Atan(curvature * a.wheelbase)
	if in.Direction == path.Backward {
		steering = -steering
	}

	steering = deadZone(steering, a.deadZone)
	steering = a.filter.Next(steering)
	if in.Dt > 0 {
		steering = utils.RateLimit(a.lastOutput, steering, a.maxRate*in.Dt)
	}
	saturated := math.Abs(steering) > a.maxAngle
	steering = utils.Clamp(steering, -a.maxAngle, a.maxAngle)
	a.lastOutput = steering

	return HeadingOutput{Curvature: curvature, SteeringAngle: steering, Saturated: saturated}, nil
}

func (a *ackermann) Reset() {
	a.filter.Reset()
	a.lastOutput = 0
}
