package localexecutor

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/specialistvlad/forgegrid/internal/command"
	"github.com/specialistvlad/forgegrid/internal/ctxlog"
	"github.com/specialistvlad/forgegrid/internal/inmemorystore"
	"github.com/specialistvlad/forgegrid/internal/nodeid"
	"github.com/specialistvlad/forgegrid/internal/task"
	"github.com/specialistvlad/forgegrid/internal/taskstore"
)

const (
	// DefaultForgeBin is the forge executable looked up on PATH.
	DefaultForgeBin = "forge"

	minEstimateSeconds   = 5
	maxRunningProgress   = 99.0
	minRunningProgress   = 1.0
	spawnFailureExitCode = -1
	minObservedSeconds   = 1.0
)

// Executor launches forge processes and reports on them.
type Executor struct {
	store    taskstore.Store
	ids      nodeid.Generator
	forgeBin string
	workDir  string
	now      func() time.Time

	mu      sync.Mutex
	outputs map[string]*outputBuffer
	wg      sync.WaitGroup
}

// Option configures an Executor.
type Option func(*Executor)

// WithStore replaces the default in-memory task store.
func WithStore(s taskstore.Store) Option {
	return func(e *Executor) { e.store = s }
}

// WithIDGenerator sets how task ids are minted. The default yields
// forge-task-1, forge-task-2, and so on.
func WithIDGenerator(g nodeid.Generator) Option {
	return func(e *Executor) { e.ids = g }
}

// WithForgeBin sets the forge executable.
func WithForgeBin(path string) Option {
	return func(e *Executor) {
		if path != "" {
			e.forgeBin = path
		}
	}
}

// WithWorkDir sets the working directory of spawned processes.
func WithWorkDir(dir string) Option {
	return func(e *Executor) { e.workDir = dir }
}

// WithClock overrides the time source used for elapsed and remaining times.
func WithClock(now func() time.Time) Option {
	return func(e *Executor) { e.now = now }
}

// New creates a local executor.
func New(opts ...Option) *Executor {
	e := &Executor{
		forgeBin: DefaultForgeBin,
		now:      time.Now,
		outputs:  make(map[string]*outputBuffer),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.store == nil {
		e.store = inmemorystore.New()
	}
	if e.ids == nil {
		e.ids = nodeid.NewSequence("forge-task")
	}
	return e
}

var _ task.Runner = (*Executor)(nil)

// Submit starts `forge --data-root dataRoot args...` in the background.
func (e *Executor) Submit(ctx context.Context, dataRoot string, args []string) (task.Start, error) {
	if err := command.Validate(args); err != nil {
		return task.Start{}, err
	}

	id := e.ids.Next()
	name := args[0]
	estimate := e.estimate(ctx, name)

	rec := taskstore.Record{
		ID:                    id,
		Command:               name,
		Args:                  append([]string(nil), args...),
		State:                 task.Running,
		StartedAt:             e.now(),
		EstimatedTotalSeconds: estimate,
	}
	if err := e.store.Insert(ctx, rec); err != nil {
		return task.Start{}, fmt.Errorf("recording task %s: %w", id, err)
	}

	ctx, logger := ctxlog.With(context.WithoutCancel(ctx), "task_id", id, "command", name)
	logger.Debug("Launching forge process.", "bin", e.forgeBin, "data_root", dataRoot, "estimate_seconds", estimate)

	out := &outputBuffer{}
	e.mu.Lock()
	e.outputs[id] = out
	e.mu.Unlock()

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		e.run(ctx, id, dataRoot, rec.Args, out)
	}()

	return task.Start{TaskID: id, EstimatedTotalSeconds: estimate}, nil
}

// Poll reports the current status of a task.
func (e *Executor) Poll(ctx context.Context, taskID string) (task.Status, error) {
	// The buffer is looked up first: finish stores the output on the record
	// before dropping the buffer, so a missing buffer means a final record.
	e.mu.Lock()
	out := e.outputs[taskID]
	e.mu.Unlock()

	rec, err := e.store.Get(ctx, taskID)
	if err != nil {
		return task.Status{}, fmt.Errorf("task %q: %w", taskID, err)
	}
	if out != nil && !rec.State.Terminal() {
		rec.Stdout = out.String()
	}
	return e.status(rec), nil
}

// Wait blocks until every launched process has exited or ctx is done.
func (e *Executor) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (e *Executor) run(ctx context.Context, id, dataRoot string, args []string, out *outputBuffer) {
	logger := ctxlog.FromContext(ctx)

	cmd := exec.Command(e.forgeBin, append([]string{"--data-root", dataRoot}, args...)...)
	cmd.Dir = e.workDir
	cmd.Stdout = out
	var stderr strings.Builder
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		logger.Warn("Forge process could not be started.", "error", err)
		e.finish(ctx, id, spawnFailureExitCode, "failed to run forge command: "+err.Error())
		return
	}

	exitCode := 0
	if err := cmd.Wait(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		} else {
			exitCode = spawnFailureExitCode
		}
	}
	logger.Debug("Forge process exited.", "exit_code", exitCode)
	e.finish(ctx, id, exitCode, stderr.String())
}

func (e *Executor) finish(ctx context.Context, id string, exitCode int, stderr string) {
	e.mu.Lock()
	out := e.outputs[id]
	e.mu.Unlock()
	defer func() {
		e.mu.Lock()
		delete(e.outputs, id)
		e.mu.Unlock()
	}()

	finishedAt := e.now()
	var name string
	var observed float64
	err := e.store.Update(ctx, id, func(rec *taskstore.Record) {
		code := exitCode
		rec.ExitCode = &code
		rec.Stderr = stderr
		if out != nil {
			rec.Stdout = out.String()
		}
		rec.FinishedAt = finishedAt
		if exitCode == 0 {
			rec.State = task.Completed
		} else {
			rec.State = task.Failed
		}
		name = rec.Command
		observed = math.Max(finishedAt.Sub(rec.StartedAt).Seconds(), minObservedSeconds)
	})
	if err != nil {
		ctxlog.FromContext(ctx).Warn("Task record disappeared before completion.", "error", err)
		return
	}
	_ = e.store.ObserveDuration(ctx, name, observed)
}

func (e *Executor) estimate(ctx context.Context, name string) int64 {
	if avg, ok := e.store.AverageDuration(ctx, name); ok {
		return int64(math.Max(math.Round(avg), minEstimateSeconds))
	}
	return DefaultEstimateSeconds(name)
}

func (e *Executor) status(rec taskstore.Record) task.Status {
	end := e.now()
	if rec.State.Terminal() && !rec.FinishedAt.IsZero() {
		end = rec.FinishedAt
	}
	elapsed := int64(end.Sub(rec.StartedAt).Seconds())
	if elapsed < 0 {
		elapsed = 0
	}

	st := task.Status{
		TaskID:                rec.ID,
		State:                 rec.State,
		Command:               rec.Command,
		Args:                  rec.Args,
		ExitCode:              rec.ExitCode,
		Stdout:                rec.Stdout,
		Stderr:                rec.Stderr,
		ElapsedSeconds:        elapsed,
		EstimatedTotalSeconds: rec.EstimatedTotalSeconds,
		ProgressPercent:       100,
	}
	if rec.State == task.Running {
		st.RemainingSeconds = max(rec.EstimatedTotalSeconds-elapsed, 0)
		st.ProgressPercent = RunningProgress(elapsed, rec.EstimatedTotalSeconds)
	}
	return st
}

// RunningProgress is the progress reported for a task that has not exited:
// elapsed over the estimate (never less than five seconds), kept within
// [1, 99] so a running task never looks idle or done.
func RunningProgress(elapsedSeconds, estimatedTotalSeconds int64) float64 {
	estimate := max(estimatedTotalSeconds, minEstimateSeconds)
	raw := float64(elapsedSeconds) / float64(estimate) * 100
	return math.Min(math.Max(raw, minRunningProgress), maxRunningProgress)
}

// DefaultEstimateSeconds is the estimate for a forge subcommand that has no
// recorded history yet.
func DefaultEstimateSeconds(name string) int64 {
	switch name {
	case "ingest":
		return 60
	case "filter":
		return 30
	case "train":
		return 240
	case "export-training":
		return 60
	case "versions":
		return 8
	case "chat":
		return 20
	default:
		return 30
	}
}

// outputBuffer collects a process's stdout while pollers read it.
type outputBuffer struct {
	mu  sync.Mutex
	buf strings.Builder
}

func (b *outputBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *outputBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
