package progress

import "context"

// CompleteLabel is the step label of the final snapshot of a successful run.
const CompleteLabel = "Pipeline complete"

// Snapshot is one progress report for a running pipeline.
type Snapshot struct {
	Running              bool    `json:"running"`
	OverallPercent       float64 `json:"overall_percent"`
	ElapsedSeconds       int64   `json:"elapsed_seconds"`
	RemainingSeconds     int64   `json:"remaining_seconds"`
	StepLabel            string  `json:"step_label"`
	StepPercent          float64 `json:"step_percent"`
	StepElapsedSeconds   int64   `json:"step_elapsed_seconds"`
	StepRemainingSeconds int64   `json:"step_remaining_seconds"`
	StepIndex            int     `json:"step_index"`
	StepCount            int     `json:"step_count"`
}

// Sink receives snapshots. The executor calls Publish serially from the
// single goroutine driving a run, so implementations need no locking for
// their own state unless they share it with other readers.
type Sink interface {
	Publish(ctx context.Context, s Snapshot)
}

// SinkFunc adapts a function into a Sink.
type SinkFunc func(ctx context.Context, s Snapshot)

// Publish implements Sink.
func (f SinkFunc) Publish(ctx context.Context, s Snapshot) { f(ctx, s) }

// Discard is a Sink that drops every snapshot.
var Discard Sink = SinkFunc(func(context.Context, Snapshot) {})

// Fanout publishes each snapshot to every sink in order.
type Fanout []Sink

// Publish implements Sink.
func (f Fanout) Publish(ctx context.Context, s Snapshot) {
	for _, sink := range f {
		if sink != nil {
			sink.Publish(ctx, s)
		}
	}
}
