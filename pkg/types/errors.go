package types

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrConfiguration is wrapped by every ConfigurationError so callers can
	// use errors.Is without caring about the field.
	ErrConfiguration = errors.New("invalid configuration")
	// ErrDataGap is returned when a sparse series has no value for an hour.
	ErrDataGap = errors.New("no data for hour")
)

// ConfigurationError describes an input that was rejected at the boundary.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ConfigurationError) Unwrap() error {
	return ErrConfiguration
}

// NewConfigurationError builds a ConfigurationError with a formatted reason.
func NewConfigurationError(field, format string, args ...any) error {
	return &ConfigurationError{
		Field:  field,
		Reason: fmt.Sprintf(format, args...),
	}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func checkNonNegative(field string, v float64) error {
	if !finite(v) || v < 0 {
		return NewConfigurationError(field, "must be a finite non-negative number, got %v", v)
	}
	return nil
}

func checkPercent(field string, v float64) error {
	if !finite(v) || v < 0 || v > 100 {
		return NewConfigurationError(field, "must be between 0 and 100, got %v", v)
	}
	return nil
}
