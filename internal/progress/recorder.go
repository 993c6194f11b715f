package progress

import (
	"context"
	"sync"
)

// Recorder is a Sink that remembers the most recent snapshot so other
// goroutines, such as an HTTP handler, can read it.
type Recorder struct {
	mu    sync.RWMutex
	last  Snapshot
	count int
}

// Publish implements Sink.
func (r *Recorder) Publish(_ context.Context, s Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.last = s
	r.count++
}

// Latest returns the last snapshot and whether any has been published.
func (r *Recorder) Latest() (Snapshot, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.last, r.count > 0
}

// Count returns how many snapshots have been published.
func (r *Recorder) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.count
}
