// Package control implements the steering and longitudinal velocity laws used while tracking a
// path. Each law is a strategy selected by a type name from configuration.
package control

import (
	"github.com/invopop/jsonschema"
	"github.com/pkg/errors"

	"go.viam.com/purepursuit/geometry"
	"go.viam.com/purepursuit/utils"
)

type headingType string

type velocityType string

const (
	headingAckermann headingType = "ackermann"

	velocityConstant  velocityType = "constant"
	velocityTrapezoid velocityType = "trapezoid"
)

// HeadingAttributeSchemas maps the heading controller types to the schema of their attributes.
var HeadingAttributeSchemas = map[string]*jsonschema.Schema{
	string(headingAckermann): jsonschema.Reflect(&AckermannConfig{}),
}

// VelocityAttributeSchemas maps the velocity controller types to the schema of their attributes.
var VelocityAttributeSchemas = map[string]*jsonschema.Schema{
	string(velocityConstant):  jsonschema.Reflect(&ProfileConfig{}),
	string(velocityTrapezoid): jsonschema.Reflect(&ProfileConfig{}),
}

// HeadingConfig selects and configures a heading controller.
type HeadingConfig struct {
	Type       string             `json:"type"`
	Attributes utils.AttributeMap `json:"attributes"`
}

// VelocityConfig selects and configures a velocity controller.
type VelocityConfig struct {
	Type       string             `json:"type"`
	Attributes utils.AttributeMap `json:"attributes"`
}

// Validate checks the strategy type and its attributes.
func (cfg HeadingConfig) Validate(path string) error {
	switch headingType(cfg.Type) {
	case headingAckermann:
		_, err := decodeAckermann(path, cfg.Attributes)
		return err
	case "":
		return utils.NewConfigValidationFieldRequiredError(path, "type")
	default:
		return utils.NewConfigValidationError(path, errors.Errorf("unknown heading controller type %q", cfg.Type))
	}
}

// Validate checks the strategy type and its attributes.
func (cfg VelocityConfig) Validate(path string) error {
	switch velocityType(cfg.Type) {
	case velocityConstant, velocityTrapezoid:
		_, err := decodeProfile(path, velocityType(cfg.Type), cfg.Attributes)
		return err
	case "":
		return utils.NewConfigValidationFieldRequiredError(path, "type")
	default:
		return utils.NewConfigValidationError(path, errors.Errorf("unknown velocity controller type %q", cfg.Type))
	}
}

// NewHeadingController builds the heading controller named by cfg.Type.
func NewHeadingController(cfg HeadingConfig, kernel geometry.Kernel) (HeadingController, error) {
	switch headingType(cfg.Type) {
	case headingAckermann:
		conf, err := decodeAckermann("heading", cfg.Attributes)
		if err != nil {
			return nil, err
		}
		return newAckermann(conf, kernel), nil
	default:
		return nil, cfg.Validate("heading")
	}
}

// NewVelocityController builds the velocity controller named by cfg.Type.
func NewVelocityController(cfg VelocityConfig) (VelocityController, error) {
	typ := velocityType(cfg.Type)
	if typ != velocityConstant && typ != velocityTrapezoid {
		return nil, cfg.Validate("velocity")
	}
	conf, err := decodeProfile("velocity", typ, cfg.Attributes)
	if err != nil {
		return nil, err
	}
	if typ == velocityTrapezoid {
		return &trapezoidVelocity{cfg: conf}, nil
	}
	return &constantVelocity{cfg: conf}, nil
}

func decodeAckermann(path string, attrs utils.AttributeMap) (AckermannConfig, error) {
	var conf AckermannConfig
	if err := attrs.Decode(&conf); err != nil {
		return AckermannConfig{}, utils.NewConfigValidationError(path, err)
	}
	if err := conf.Validate(path); err != nil {
		return AckermannConfig{}, err
	}
	return conf, nil
}

func decodeProfile(path string, typ velocityType, attrs utils.AttributeMap) (ProfileConfig, error) {
	var conf ProfileConfig
	if err := attrs.Decode(&conf); err != nil {
		return ProfileConfig{}, utils.NewConfigValidationError(path, err)
	}
	if err := conf.validate(path, typ); err != nil {
		return ProfileConfig{}, err
	}
	return conf, nil
}
