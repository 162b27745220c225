package control

import (
	"math"
	"testing"

	"github.com/pkg/errors"
	"go.viam.com/test"

	"go.viam.com/purepursuit/geometry"
	"go.viam.com/purepursuit/path"
	"go.viam.com/purepursuit/utils"
)

func newTestAckermann(t *testing.T, attrs utils.AttributeMap) HeadingController {
	t.Helper()
	k, err := geometry.NewKernel(geometry.DefaultEpsilon)
	test.That(t, err, test.ShouldBeNil)
	base := utils.AttributeMap{"wheelbase": 2.7, "max_steering_angle_deg": 30}
	for key, v := range attrs {
		base[key] = v
	}
	ctrl, err := NewHeadingController(HeadingConfig{Type: "ackermann", Attributes: base}, k)
	test.That(t, err, test.ShouldBeNil)
	return ctrl
}

func TestAckermannLaw(t *testing.T) {
	ctrl := newTestAckermann(t, nil)

	t.Run("straight ahead", func(t *testing.T) {
		out, err := ctrl.Compute(HeadingInput{Pose: geometry.NewPose(0, 0, 0), Goal: geometry.NewPoint(3, 0)})
		test.That(t, err, test.ShouldBeNil)
		test.That(t, out.Curvature, test.ShouldAlmostEqual, 0)
		test.That(t, out.SteeringAngle, test.ShouldAlmostEqual, 0)
		test.That(t, out.Saturated, test.ShouldBeFalse)
	})

	t.Run("goal to the left", func(t *testing.T) {
		out, err := ctrl.Compute(HeadingInput{Pose: geometry.NewPose(0, 0, 0), Goal: geometry.NewPoint(3, 1)})
		test.That(t, err, test.ShouldBeNil)
		test.That(t, out.Curvature, test.ShouldAlmostEqual, 0.2)
		test.That(t, out.SteeringAngle, test.ShouldAlmostEqual, math.Atan(0.54))
		test.That(t, out.Saturated, test.ShouldBeFalse)
	})

	t.Run("goal to the right of a rotated pose", func(t *testing.T) {
		out, err := ctrl.Compute(HeadingInput{Pose: geometry.NewPose(1, 1, math.Pi/2), Goal: geometry.NewPoint(2, 4)})
		test.That(t, err, test.ShouldBeNil)
		test.That(t, out.Curvature, test.ShouldAlmostEqual, -0.2)
		test.That(t, out.SteeringAngle, test.ShouldAlmostEqual, -math.Atan(0.54))
	})

	t.Run("saturation", func(t *testing.T) {
		out, err := ctrl.Compute(HeadingInput{Pose: geometry.NewPose(0, 0, 0), Goal: geometry.NewPoint(0, 2)})
		test.That(t, err, test.ShouldBeNil)
		test.That(t, out.Curvature, test.ShouldAlmostEqual, 1)
		test.That(t, out.SteeringAngle, test.ShouldAlmostEqual, utils.DegToRad(30))
		test.That(t, out.Saturated, test.ShouldBeTrue)
	})

	t.Run("goal behind", func(t *testing.T) {
		out, err := ctrl.Compute(HeadingInput{Pose: geometry.NewPose(0, 0, 0), Goal: geometry.NewPoint(-1, -2)})
		test.That(t, err, test.ShouldBeNil)
		test.That(t, out.SteeringAngle, test.ShouldAlmostEqual, -utils.DegToRad(30))
		test.That(t, out.Saturated, test.ShouldBeTrue)
	})

	t.Run("degenerate", func(t *testing.T) {
		_, err := ctrl.Compute(HeadingInput{Pose: geometry.NewPose(1, 1, 0), Goal: geometry.NewPoint(1, 1)})
		test.That(t, errors.Is(err, geometry.ErrDegenerateGeometry), test.ShouldBeTrue)
		_, err = ctrl.Compute(HeadingInput{Pose: geometry.NewPose(1, 1, math.NaN()), Goal: geometry.NewPoint(3, 1)})
		test.That(t, errors.Is(err, geometry.ErrDegenerateGeometry), test.ShouldBeTrue)
	})
}

func TestAckermannBackward(t *testing.T) {
	ctrl := newTestAckermann(t, nil)

	// Reversing straight back along the path.
	out, err := ctrl.Compute(HeadingInput{
		Pose:      geometry.NewPose(0, 0, 0),
		Goal:      geometry.NewPoint(-3, 0),
		Direction: path.Backward,
	})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out.Curvature, test.ShouldAlmostEqual, 0)
	test.That(t, out.SteeringAngle, test.ShouldAlmostEqual, 0)

	// Goal behind and to the right: the travel direction must turn left, which in reverse means
	// steering right.
	out, err = ctrl.Compute(HeadingInput{
		Pose:      geometry.NewPose(0, 0, 0),
		Goal:      geometry.NewPoint(-3, -1),
		Direction: path.Backward,
	})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out.Curvature, test.ShouldAlmostEqual, 0.2)
	test.That(t, out.SteeringAngle, test.ShouldAlmostEqual, -math.Atan(0.54))
}

func TestAckermannPostProcessing(t *testing.T) {
	left := HeadingInput{Pose: geometry.NewPose(0, 0, 0), Goal: geometry.NewPoint(3, 1), Dt: 0.1}
	straight := HeadingInput{Pose: geometry.NewPose(0, 0, 0), Goal: geometry.NewPoint(3, 0), Dt: 0.1}

	t.Run("dead zone", func(t *testing.T) {
		ctrl := newTestAckermann(t, utils.AttributeMap{"dead_zone_deg": 0.5})
		out, err := ctrl.Compute(HeadingInput{Pose: geometry.NewPose(0, 0, 0), Goal: geometry.NewPoint(10, 0.05)})
		test.That(t, err, test.ShouldBeNil)
		test.That(t, out.Curvature, test.ShouldBeGreaterThan, 0.)
		test.That(t, out.SteeringAngle, test.ShouldEqual, 0.)

		out, err = ctrl.Compute(left)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, out.SteeringAngle, test.ShouldAlmostEqual, math.Atan(0.54))
	})

	t.Run("rate limit", func(t *testing.T) {
		ctrl := newTestAckermann(t, utils.AttributeMap{"max_steering_rate_deg_per_sec": 10})
		out, err := ctrl.Compute(left)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, out.SteeringAngle, test.ShouldAlmostEqual, utils.DegToRad(1))
		out, err = ctrl.Compute(left)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, out.SteeringAngle, test.ShouldAlmostEqual, utils.DegToRad(2))
		out, err = ctrl.Compute(straight)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, out.SteeringAngle, test.ShouldAlmostEqual, utils.DegToRad(1))

		ctrl.Reset()
		out, err = ctrl.Compute(left)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, out.SteeringAngle, test.ShouldAlmostEqual, utils.DegToRad(1))

		// Without a time step there is nothing to limit against.
		out, err = ctrl.Compute(HeadingInput{Pose: left.Pose, Goal: left.Goal})
		test.That(t, err, test.ShouldBeNil)
		test.That(t, out.SteeringAngle, test.ShouldAlmostEqual, math.Atan(0.54))
	})

	t.Run("filter", func(t *testing.T) {
		ctrl := newTestAckermann(t, utils.AttributeMap{"filter_weight": 0.5})
		out, err := ctrl.Compute(left)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, out.SteeringAngle, test.ShouldAlmostEqual, math.Atan(0.54))
		out, err = ctrl.Compute(straight)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, out.SteeringAngle, test.ShouldAlmostEqual, math.Atan(0.54)/2)

		ctrl.Reset()
		out, err = ctrl.Compute(straight)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, out.SteeringAngle, test.ShouldAlmostEqual, 0)
	})
}
