package utils

import (
	"github.com/pkg/errors"
)

// NewConfigValidationError returns an error specifying that there was an error with the config at
// the given path.
func NewConfigValidationError(path string, err error) error {
	return errors.Wrapf(err, "error validating %q", path)
}

// NewConfigValidationFieldRequiredError returns an error specifying that the given field is
// missing from a config at the given path.
func NewConfigValidationFieldRequiredError(path, field string) error {
	return NewConfigValidationError(path, errors.Errorf("%q is required", field))
}

// NewConfigValidationPositiveFieldError returns an error specifying that the given field must be
// greater than zero.
func NewConfigValidationPositiveFieldError(path, field string, value float64) error {
	return NewConfigValidationError(path, errors.Errorf("%q must be greater than zero, got %v", field, value))
}

// NewConfigValidationNegativeFieldError returns an error specifying that the given field may not
// be negative.
func NewConfigValidationNegativeFieldError(path, field string, value float64) error {
	return NewConfigValidationError(path, errors.Errorf("%q cannot be negative, got %v", field, value))
}
