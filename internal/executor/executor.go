// Package executor drives an ordered pipeline through an external task
// runner, one step at a time.
//
// # Why Executor Exists
//
// A plan says which steps run and in what order. The executor turns that
// into work: every step is translated into a forge invocation, submitted,
// polled until it reaches a terminal state, and its output captured before
// the next step is even submitted. Later steps may depend on files an earlier
// step writes, so there is never more than one task in flight.
//
// While a step runs the executor publishes a progress.Snapshot on every poll
// tick. Snapshots are published from the single goroutine calling Run, in
// order, so a sink never sees two at once.
//
// # Failure
//
// A step that ends failed, or with a non-zero exit code, stops the run with a
// *StepFailedError. Earlier steps are not undone. Errors from the launcher or
// the status provider are returned as they are, wrapped only for context.
// In every failure case the partial Result (console log and history path so
// far) is returned alongside the error.
package executor

import (
	"context"
	"strings"
	"time"

	"github.com/specialistvlad/forgegrid/internal/command"
	"github.com/specialistvlad/forgegrid/internal/ctxlog"
	"github.com/specialistvlad/forgegrid/internal/metrics"
	"github.com/specialistvlad/forgegrid/internal/node"
	"github.com/specialistvlad/forgegrid/internal/progress"
	"github.com/specialistvlad/forgegrid/internal/scheduler"
	"github.com/specialistvlad/forgegrid/internal/task"
)

// Translator maps a node to the forge argument vector that runs it.
type Translator interface {
	Translate(n node.Node) ([]string, error)
}

// Result is what a run leaves behind.
type Result struct {
	// ConsoleOutput holds, per executed step, the command line followed by
	// its trimmed stdout and stderr, joined with newlines.
	ConsoleOutput string
	// HistoryPath is the last history path any step announced.
	HistoryPath string
	HasHistory  bool
}

// Orchestrator runs ordered pipelines.
type Orchestrator struct {
	launcher     task.Launcher
	status       task.StatusProvider
	translator   Translator
	pacer        scheduler.Pacer
	pollInterval time.Duration
	metrics      *metrics.Metrics
	now          func() time.Time
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithTranslator replaces the default command translator.
func WithTranslator(t Translator) Option {
	return func(o *Orchestrator) { o.translator = t }
}

// WithPacer replaces the timer-based pacer between polls.
func WithPacer(p scheduler.Pacer) Option {
	return func(o *Orchestrator) { o.pacer = p }
}

// WithPollInterval sets the pause between status polls.
func WithPollInterval(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.pollInterval = d
		}
	}
}

// WithMetrics records run and step metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

// WithClock overrides the time source for elapsed times.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// New creates an Orchestrator that submits through launcher and polls
// through status. A task.Runner can be passed as both.
func New(launcher task.Launcher, status task.StatusProvider, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		launcher:     launcher,
		status:       status,
		translator:   command.NewTranslator(),
		pacer:        scheduler.New(),
		pollInterval: scheduler.DefaultPollInterval,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// run is the mutable state of one Run call. It is touched only by the
// goroutine executing Run.
type run struct {
	dataRoot  string
	nodes     []node.Node
	sink      progress.Sink
	estimates *progress.Estimates
	startedAt time.Time

	console     []string
	historyPath string
	hasHistory  bool
}

func (r *run) result() *Result {
	return &Result{
		ConsoleOutput: strings.Join(r.console, "\n"),
		HistoryPath:   r.historyPath,
		HasHistory:    r.hasHistory,
	}
}

// Run executes nodes in the given order against dataRoot, publishing
// progress to sink (which may be nil).
//
// An empty node list returns an empty Result without contacting the runner
// or the sink.
func (o *Orchestrator) Run(ctx context.Context, nodes []node.Node, dataRoot string, sink progress.Sink) (res *Result, err error) {
	if len(nodes) == 0 {
		return &Result{}, nil
	}
	if sink == nil {
		sink = progress.Discard
	}

	ctx, logger := ctxlog.With(ctx, "data_root", dataRoot)
	r := &run{
		dataRoot:  dataRoot,
		nodes:     nodes,
		sink:      sink,
		estimates: progress.NewEstimates(nodes),
		startedAt: o.now(),
	}

	o.metrics.RunStarted()
	defer func() { o.metrics.RunFinished(o.now().Sub(r.startedAt), err) }()

	logger.Info("▶️ Starting pipeline run.", "steps", len(nodes), "estimated_seconds", r.estimates.Total())

	for i, n := range nodes {
		if err := o.runStep(ctx, r, i, n); err != nil {
			logger.Error("Pipeline run failed.", "step", i+1, "node_id", n.ID, "error", err)
			return r.result(), err
		}
	}

	sink.Publish(ctx, progress.Snapshot{
		Running:        false,
		OverallPercent: 100,
		ElapsedSeconds: o.elapsed(r.startedAt),
		StepLabel:      progress.CompleteLabel,
		StepPercent:    100,
		StepIndex:      len(nodes),
		StepCount:      len(nodes),
	})

	res = r.result()
	logger.Info("✅ Pipeline run finished.", "steps", len(nodes), "history_path", res.HistoryPath)
	return res, nil
}

func (o *Orchestrator) elapsed(since time.Time) int64 {
	d := o.now().Sub(since)
	if d < 0 {
		return 0
	}
	return int64(d.Seconds())
}
