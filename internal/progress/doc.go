// Package progress turns per-step timing reported by the task runner into
// pipeline-wide progress and ETA figures, and defines the Sink that receives
// the resulting snapshots.
//
// The functions here are pure arithmetic. Estimates is the only stateful
// type, and it belongs to a single run.
package progress
