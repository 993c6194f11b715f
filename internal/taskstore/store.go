// Package taskstore defines the interface for storing the records of forge
// tasks launched by the local executor.
//
// # Why Task Store Exists
//
// The local executor starts a forge process in the background and answers
// status polls while it runs. The process goroutine writes to the record
// (stdout chunks, exit code, stderr) and the poller reads from it, so the
// record needs a home that both sides can reach safely. The store is that
// home. It also remembers how long each forge subcommand took recently so new
// submissions start with a useful estimate.
//
// Records are ephemeral. A store lives as long as its executor and keeps a
// bounded number of finished records.
package taskstore

import (
	"context"
	"errors"
	"time"

	"github.com/specialistvlad/forgegrid/internal/task"
)

// ErrTaskNotFound is returned when no record exists for a task id.
var ErrTaskNotFound = errors.New("unknown task id")

// DefaultMaxRecords bounds how many records a store keeps before it starts
// evicting finished ones.
const DefaultMaxRecords = 200

// Record is the mutable state of one forge task.
type Record struct {
	ID                    string
	Command               string
	Args                  []string
	State                 task.State
	StartedAt             time.Time
	FinishedAt            time.Time
	EstimatedTotalSeconds int64
	Stdout                string
	Stderr                string
	ExitCode              *int
}

// Clone returns a copy that shares no mutable memory with r.
func (r Record) Clone() Record {
	out := r
	out.Args = append([]string(nil), r.Args...)
	if r.ExitCode != nil {
		code := *r.ExitCode
		out.ExitCode = &code
	}
	return out
}

// Store manages task records and per-command duration history.
//
// Implementations must be safe for concurrent use: the goroutine that owns a
// running process updates its record while pollers read it.
type Store interface {
	// Insert adds a new record. Inserting may evict old finished records.
	Insert(ctx context.Context, rec Record) error

	// Get returns a copy of the record, or ErrTaskNotFound.
	Get(ctx context.Context, id string) (Record, error)

	// Update applies fn to the stored record under the store's lock.
	// It returns ErrTaskNotFound when the record has been evicted.
	Update(ctx context.Context, id string, fn func(*Record)) error

	// AverageDuration returns the smoothed duration of a command, in seconds.
	AverageDuration(ctx context.Context, command string) (float64, bool)

	// ObserveDuration folds an observed duration into the command's average.
	ObserveDuration(ctx context.Context, command string, seconds float64) error
}

// Smooth folds observed into an exponentially weighted moving average. The
// first observation is taken as-is.
func Smooth(current float64, known bool, observed float64) float64 {
	if !known {
		return observed
	}
	return current*0.7 + observed*0.3
}
