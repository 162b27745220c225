package utils

import (
	"testing"

	"github.com/pkg/errors"
	"go.viam.com/test"
)

func TestConfigValidationErrors(t *testing.T) {
	err := NewConfigValidationFieldRequiredError("tracker.heading", "type")
	test.That(t, err.Error(), test.ShouldEqual, `error validating "tracker.heading": "type" is required`)

	err = NewConfigValidationPositiveFieldError("tracker", "lookahead_radius", -1)
	test.That(t, err.Error(), test.ShouldEqual, `error validating "tracker": "lookahead_radius" must be greater than zero, got -1`)

	err = NewConfigValidationNegativeFieldError("tracker.velocity", "braking_distance", -0.5)
	test.That(t, err.Error(), test.ShouldEqual, `error validating "tracker.velocity": "braking_distance" cannot be negative, got -0.5`)

	sentinel := errors.New("bad")
	test.That(t, errors.Is(NewConfigValidationError("p", sentinel), sentinel), test.ShouldBeTrue)
}
