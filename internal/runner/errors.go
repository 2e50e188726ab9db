package runner

import (
	"errors"
	"fmt"
)

var ErrNilStepper = errors.New("runner: nil stepper")

// StepError wraps a failure of the stepper with the step it occurred at.
type StepError struct {
	Label   string
	Step    int
	Wrapped error
}

func (e *StepError) Error() string {
	if e.Label == "" {
		return fmt.Sprintf("step %d: %v", e.Step, e.Wrapped)
	}
	return fmt.Sprintf("%s: step %d: %v", e.Label, e.Step, e.Wrapped)
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}
