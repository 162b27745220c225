package utils

import (
	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"
)

// AttributeMap is a loosely typed set of strategy specific attributes, as found in config files.
type AttributeMap map[string]interface{}

// Decode fills `into` (a pointer to a struct with json tags) from the attributes. Unknown keys are
// an error so that typos in config files surface early.
func (am AttributeMap) Decode(into interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		Result:           into,
		ErrorUnused:      true,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(map[string]interface{}(am)); err != nil {
		return errors.Wrap(err, "failed to decode attributes")
	}
	return nil
}
