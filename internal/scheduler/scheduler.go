package scheduler

import (
	"context"
	"sync/atomic"
	"time"
)

// TimerPacer is the production Pacer backed by time.Timer.
type TimerPacer struct{}

// New returns the default pacer.
func New() Pacer {
	return TimerPacer{}
}

// Wait implements Pacer.
func (TimerPacer) Wait(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Immediate is a Pacer that never sleeps. It still honours cancellation and
// counts how many times it was asked to wait.
type Immediate struct {
	waits atomic.Int64
}

// Wait implements Pacer.
func (p *Immediate) Wait(ctx context.Context, d time.Duration) error {
	p.waits.Add(1)
	return ctx.Err()
}

// Waits returns how many times Wait has been called.
func (p *Immediate) Waits() int64 {
	return p.waits.Load()
}
