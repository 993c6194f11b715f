// Package session defines how a pipeline run obtains its external task
// runner, and serializes runs that share a data root.
package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"

	"github.com/specialistvlad/forgegrid/internal/task"
)

// LockFileName is the file inside a data root that a run holds locked.
const LockFileName = ".forgegrid.lock"

// ErrRunInProgress is returned when another run already holds the data root.
var ErrRunInProgress = errors.New("a pipeline run is already in progress for this data root")

// Factory creates a Session for one run against dataRoot. Different
// implementations can back the runner locally or remotely.
type Factory interface {
	NewSession(ctx context.Context, dataRoot string) (Session, error)
}

// Session represents a single run and owns its resources.
type Session interface {
	Runner() task.Runner
	// Close releases the session's resources, including its run token.
	Close(ctx context.Context) error
}

// Manager hands out one run token per data root. Claims are tracked in
// process and backed by an exclusive file lock, so runs from separate
// processes exclude each other too.
type Manager struct {
	mu     sync.Mutex
	active map[string]struct{}
}

// NewManager creates a Manager with no active runs.
func NewManager() *Manager {
	return &Manager{active: make(map[string]struct{})}
}

// Acquire claims dataRoot for a run, creating the directory if needed. It
// fails immediately with ErrRunInProgress instead of waiting when the root
// is taken.
func (m *Manager) Acquire(dataRoot string) (*Token, error) {
	key := normalize(dataRoot)
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, busy := m.active[key]; busy {
		return nil, fmt.Errorf("%w: %s", ErrRunInProgress, key)
	}

	if err := os.MkdirAll(key, 0o755); err != nil {
		return nil, fmt.Errorf("creating data root %s: %w", key, err)
	}
	lock := flock.New(filepath.Join(key, LockFileName))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("locking data root %s: %w", key, err)
	}
	if !locked {
		return nil, fmt.Errorf("%w: %s", ErrRunInProgress, key)
	}

	m.active[key] = struct{}{}
	return &Token{m: m, key: key, lock: lock}, nil
}

// Active reports whether a run of this Manager currently holds dataRoot.
func (m *Manager) Active(dataRoot string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.active[normalize(dataRoot)]
	return ok
}

// Token is the claim on a data root. Release is idempotent.
type Token struct {
	m    *Manager
	key  string
	lock *flock.Flock
	once sync.Once
}

// DataRoot returns the normalized data root this token holds.
func (t *Token) DataRoot() string { return t.key }

// Release gives the data root back. The lock file stays in place.
func (t *Token) Release() {
	t.once.Do(func() {
		t.m.mu.Lock()
		defer t.m.mu.Unlock()
		_ = t.lock.Unlock()
		delete(t.m.active, t.key)
	})
}

func normalize(dataRoot string) string {
	if abs, err := filepath.Abs(dataRoot); err == nil {
		return abs
	}
	return filepath.Clean(dataRoot)
}
