package phys

import (
	"errors"
	"fmt"
)

// Domain errors for simulation operations.
var (
	// ErrDimensionMismatch indicates incompatible physical units combined
	// in an arithmetic operation.
	ErrDimensionMismatch = errors.New("phys: dimension mismatch")

	// ErrBoundViolation indicates a value outside its registered legal
	// range (e.g. non-positive absolute temperature).
	ErrBoundViolation = errors.New("phys: physical bound violation")

	// ErrNumericalInstability indicates a singular metric or non-finite
	// field values; the affected ring must not advance further.
	ErrNumericalInstability = errors.New("phys: numerical instability")

	// ErrConfiguration indicates an unknown integrator, solver, or
	// coupling-edge target.
	ErrConfiguration = errors.New("phys: invalid configuration")
)

// StepError wraps a failure with the ring and simulation time it occurred at.
type StepError struct {
	Ring    string
	Time    float64
	Wrapped error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("ring %s (t=%.6f): %v", e.Ring, e.Time, e.Wrapped)
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}
