// Package task defines the contract between the pipeline executor and the
// external command runner: submitting a step and polling its status.
package task

import "context"

// State is the lifecycle state of a submitted task.
type State string

const (
	// Running means the task has not finished yet.
	Running State = "running"
	// Completed means the task exited successfully.
	Completed State = "completed"
	// Failed means the task exited with an error or could not be started.
	Failed State = "failed"
)

// Terminal reports whether s is a final state.
func (s State) Terminal() bool {
	return s == Completed || s == Failed
}

// Start is returned when a task is submitted.
type Start struct {
	TaskID                string `json:"task_id"`
	EstimatedTotalSeconds int64  `json:"estimated_total_seconds"`
}

// Status is a point-in-time view of a submitted task.
type Status struct {
	TaskID  string   `json:"task_id"`
	State   State    `json:"status"`
	Command string   `json:"command"`
	Args    []string `json:"args"`
	// ExitCode is nil while the task is running.
	ExitCode              *int    `json:"exit_code"`
	Stdout                string  `json:"stdout"`
	Stderr                string  `json:"stderr"`
	ElapsedSeconds        int64   `json:"elapsed_seconds"`
	EstimatedTotalSeconds int64   `json:"estimated_total_seconds"`
	RemainingSeconds      int64   `json:"remaining_seconds"`
	ProgressPercent       float64 `json:"progress_percent"`
}

// Succeeded reports whether the task completed with a zero exit code.
func (s Status) Succeeded() bool {
	return s.State == Completed && (s.ExitCode == nil || *s.ExitCode == 0)
}

// Launcher submits a command to the external runner.
type Launcher interface {
	Submit(ctx context.Context, dataRoot string, args []string) (Start, error)
}

// StatusProvider reports the status of a previously submitted task. It must
// eventually report a terminal state for every submitted task.
type StatusProvider interface {
	Poll(ctx context.Context, taskID string) (Status, error)
}

// Runner is the full external runner contract.
type Runner interface {
	Launcher
	StatusProvider
}
