package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Parameter errors
	ErrInvalidParameter = errors.New("invalid parameter")

	// Model errors
	ErrModelFit = errors.New("model fit failed")

	// Aggregation errors
	ErrInsufficientData = errors.New("insufficient data for aggregation")

	// Lookup errors
	ErrNotFound       = errors.New("resource not found")
	ErrReportNotFound = fmt.Errorf("%w: report", ErrNotFound)
)

// Error constructors with context
func NewInvalidParameterError(param string, reason string) error {
	return fmt.Errorf("%w: %s %s", ErrInvalidParameter, param, reason)
}

func NewModelFitError(model string, reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrModelFit, model, reason)
}

func NewInsufficientDataError(got, want int) error {
	return fmt.Errorf("%w: have %d samples, need at least %d", ErrInsufficientData, got, want)
}

// Error checking helpers
func IsInvalidParameterError(err error) bool {
	return errors.Is(err, ErrInvalidParameter)
}

func IsModelFitError(err error) bool {
	return errors.Is(err, ErrModelFit)
}

func IsInsufficientDataError(err error) bool {
	return errors.Is(err, ErrInsufficientData)
}

func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}
