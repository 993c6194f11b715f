// Package scheduler provides the pacing used by the pipeline executor while
// it waits for an external task to finish.
//
// # Why Scheduler Exists
//
// A pipeline step runs outside this process. The executor learns about its
// progress only by polling, one poll per interval, until the task reports a
// terminal state. Every wait in that loop goes through a Pacer, which gives
// the loop exactly one suspension point to reason about:
//
//   - **Testability:** tests swap in a pacer that never sleeps and counts ticks
//   - **Cancellation:** Wait observes ctx, so a caller that cancels the
//     context stops the loop at the next tick without the loop knowing why
//   - **Policy:** the interval (fixed today) lives in one component
//
// The executor never cancels the context itself. A step that has been
// submitted keeps running in the external runner regardless.
package scheduler

import (
	"context"
	"time"
)

// DefaultPollInterval is the pause between two status polls.
const DefaultPollInterval = 900 * time.Millisecond

// Pacer suspends the poll loop between ticks.
type Pacer interface {
	// Wait blocks for d, or until ctx is done, in which case it returns
	// ctx.Err(). A non-positive d returns immediately unless ctx is already
	// done.
	Wait(ctx context.Context, d time.Duration) error
}

// PacerFunc adapts a function into a Pacer.
type PacerFunc func(ctx context.Context, d time.Duration) error

// Wait implements Pacer.
func (f PacerFunc) Wait(ctx context.Context, d time.Duration) error { return f(ctx, d) }
