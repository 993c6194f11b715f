// Package localexecutor runs forge subcommands as local child processes and
// exposes them through the task.Launcher and task.StatusProvider contracts.
//
// # Why Local Executor Exists
//
// The pipeline executor only knows how to submit a step and poll its status.
// Something has to actually start `forge --data-root <root> <args...>`,
// capture what it prints, and answer "how far along is it?" while it runs.
// This package does that for a single machine.
//
// # Lifecycle
//
// Submit validates the argument vector, mints a task id, seeds an estimate
// for the subcommand, records the task as running and starts the process in
// a background goroutine. The goroutine appends stdout to the task record as
// it arrives and, once the process exits, stores stderr and the exit code and
// folds the observed duration into the subcommand's moving average. Poll
// turns the stored record into a task.Status.
//
// A process that cannot be started is reported as a failed task with exit
// code -1 rather than as a Submit error, the same way a crashed process is.
package localexecutor
