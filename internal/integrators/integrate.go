package integrators

import (
	"fmt"

	"github.com/san-kum/spinsim/internal/dynamo"
)

// checkStep runs the system's own step check, if it has one.
func checkStep(dyn dynamo.System, x0, x1 dynamo.State) error {
	if c, ok := dyn.(dynamo.StepChecker); ok {
		return c.CheckStep(x0, x1)
	}
	return nil
}

func validate(cfg dynamo.Config, dyn dynamo.System, x0 dynamo.State, span []float64) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := dynamo.ValidateSpan(span); err != nil {
		return err
	}
	if len(x0) != dyn.StateDim() {
		return fmt.Errorf("%w: initial state has %d components, system needs %d", dynamo.ErrInvalidInput, len(x0), dyn.StateDim())
	}
	if !x0.IsValid() {
		return fmt.Errorf("%w: initial state contains NaN or Inf", dynamo.ErrInvalidInput)
	}
	return nil
}
