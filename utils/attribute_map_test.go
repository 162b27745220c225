package utils

import (
	"testing"

	"go.viam.com/test"
)

type sampleAttrs struct {
	Wheelbase   float64 `json:"wheelbase"`
	MaxSteering float64 `json:"max_steering_angle_deg"`
	Name        string  `json:"name,omitempty"`
}

func TestAttributeMap(t *testing.T) {
	am := AttributeMap{
		"wheelbase":              2.7,
		"max_steering_angle_deg": 30,
	}
	t.Run("decode", func(t *testing.T) {
		var attrs sampleAttrs
		test.That(t, am.Decode(&attrs), test.ShouldBeNil)
		test.That(t, attrs, test.ShouldResemble, sampleAttrs{Wheelbase: 2.7, MaxSteering: 30})
	})

	t.Run("unknown key", func(t *testing.T) {
		var attrs sampleAttrs
		err := AttributeMap{"wheel_base": 2.7}.Decode(&attrs)
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, "wheel_base")
	})

	t.Run("nil map", func(t *testing.T) {
		var attrs sampleAttrs
		var empty AttributeMap
		test.That(t, empty.Decode(&attrs), test.ShouldBeNil)
		test.That(t, attrs, test.ShouldResemble, sampleAttrs{})
	})
}
