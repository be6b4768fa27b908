package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for simulation operations.
var (
	// ErrInvalidParameter indicates a design parameter outside its valid range.
	ErrInvalidParameter = errors.New("dynamo: invalid parameter")

	// ErrInvalidInput indicates a malformed thrust table, time span or state.
	ErrInvalidInput = errors.New("dynamo: invalid input")

	// ErrNumericalSingularity indicates the equations of motion are undefined
	// at the current state (gimbal lock).
	ErrNumericalSingularity = errors.New("dynamo: numerical singularity")

	// ErrIntegrationFailure indicates the solver exhausted its step or error budget.
	ErrIntegrationFailure = errors.New("dynamo: integration failure")
)

// ParameterError names the offending parameter and its value.
type ParameterError struct {
	Name  string
	Value float64
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("%v: %s = %g (must be positive)", ErrInvalidParameter, e.Name, e.Value)
}

func (e *ParameterError) Unwrap() error {
	return ErrInvalidParameter
}

// SimulationError wraps an error with simulation context.
type SimulationError struct {
	Step    int
	Time    float64
	State   State
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d (t=%.6g): %v", e.Step, e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
