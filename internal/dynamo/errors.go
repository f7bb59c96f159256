package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for integration and simulation.
var (
	// ErrNilFunction indicates a missing derivative function.
	ErrNilFunction = errors.New("dynamo: derivative function is nil")

	// ErrEmptyState indicates a state vector with no components.
	ErrEmptyState = errors.New("dynamo: state vector is empty")

	// ErrZeroStepSize indicates a step size of zero, which would never advance X.
	ErrZeroStepSize = errors.New("dynamo: step size must be non-zero")

	// ErrParameterBounds indicates a parameter value is outside valid range.
	ErrParameterBounds = errors.New("dynamo: parameter out of valid bounds")

	// ErrDimensionMismatch indicates a derivative or state of the wrong length.
	ErrDimensionMismatch = errors.New("dynamo: dimension mismatch between state and system")

	// ErrInvalidState indicates a state vector containing NaN or Inf.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrUnknownModel indicates a model name with no registered builder.
	ErrUnknownModel = errors.New("dynamo: unknown model")
)

// ConfigError reports a rejected configuration field.
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// DimensionError reports a vector whose length differs from the
// integrator's fixed dimension.
type DimensionError struct {
	Stage string
	Want  int
	Got   int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("%s: %s: want length %d, got %d", ErrDimensionMismatch, e.Stage, e.Want, e.Got)
}

func (e *DimensionError) Is(target error) bool {
	return target == ErrDimensionMismatch
}

// SimulationError wraps an error with simulation context.
type SimulationError struct {
	Step    int
	Time    float64
	State   State
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d (x=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
