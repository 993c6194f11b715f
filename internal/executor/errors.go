package executor

import (
	"errors"
	"fmt"

	"github.com/specialistvlad/forgegrid/internal/task"
)

// ErrStepFailed is the sentinel wrapped by every *StepFailedError.
var ErrStepFailed = errors.New("pipeline step failed")

// StepFailedError reports a step whose task ended failed or with a non-zero
// exit code.
type StepFailedError struct {
	NodeID string
	// Step is the step label, for example "Step 2/3: Filter".
	Step string
	// Command is the forge command line as shown in the console log.
	Command  string
	Stderr   string
	ExitCode *int
	State    task.State
	// Result is the partial result up to and including the failed step.
	Result *Result
}

func (e *StepFailedError) Error() string {
	msg := fmt.Sprintf("%s failed: %s", e.Step, e.Command)
	if e.ExitCode != nil {
		msg += fmt.Sprintf(" exited with code %d", *e.ExitCode)
	} else {
		msg += fmt.Sprintf(" ended %s", e.State)
	}
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

func (e *StepFailedError) Unwrap() error { return ErrStepFailed }
