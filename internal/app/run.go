package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/specialistvlad/forgegrid/internal/canvas"
	"github.com/specialistvlad/forgegrid/internal/command"
	"github.com/specialistvlad/forgegrid/internal/config"
	"github.com/specialistvlad/forgegrid/internal/ctxlog"
	"github.com/specialistvlad/forgegrid/internal/dag"
	"github.com/specialistvlad/forgegrid/internal/executor"
	"github.com/specialistvlad/forgegrid/internal/progress"
	"github.com/specialistvlad/forgegrid/internal/registry"
)

// ErrConfiguration marks failures caused by the pipeline document or the
// command line rather than by a running step.
var ErrConfiguration = errors.New("configuration error")

// ErrNoStartNode is returned when no start node was given and the pipeline
// has no root to fall back on.
var ErrNoStartNode = errors.New("no start node: every node has an upstream edge")

// Run executes the main application logic based on the provided configuration.
func (a *App) Run(ctx context.Context) error {
	ctx = a.Context(ctx)
	a.logger.Debug("App.Run method started.")

	if a.config.HealthcheckPort > 0 {
		a.startHealthcheckServer(ctx)
		defer a.closeHealthcheckServer(ctx)
	}

	doc, err := a.loader.Load(ctx, a.config.PipelinePath)
	if err != nil {
		return fmt.Errorf("%w: failed to load pipeline: %w", ErrConfiguration, err)
	}
	a.logger.Info("Pipeline loaded.", "name", doc.Name, "nodes", len(doc.Nodes), "edges", len(doc.Edges))

	plan, err := a.Plan(ctx, doc)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrConfiguration, err)
	}

	if a.config.ExportCanvas {
		path, err := canvas.ExportFile(a.config.DataRoot, a.config.ExportPath, doc, a.now())
		if err != nil {
			return err
		}
		a.logger.Info("Canvas exported.", "path", path)
	}

	if a.config.DryRun {
		a.printPlan(plan)
		return nil
	}
	if len(plan.Nodes) == 0 {
		a.logger.Warn("No nodes found in pipeline, execution not required.")
		return nil
	}

	progressNames := a.config.Progress
	if len(progressNames) == 0 {
		progressNames = DefaultProgress
	}
	sinks, err := a.sinks.Build(ctx, progressNames, registry.Options{
		Out:               a.outW,
		SocketIOURL:       a.config.SocketIOURL,
		SocketIONamespace: a.config.SocketIONamespace,
		SocketIOEvent:     a.config.SocketIOEvent,
	})
	if err != nil {
		if errors.Is(err, registry.ErrUnknownSink) {
			return fmt.Errorf("%w: %w", ErrConfiguration, err)
		}
		return err
	}
	defer func() {
		if err := sinks.Close(); err != nil {
			a.logger.Warn("Closing progress sinks failed.", "error", err)
		}
	}()

	sess, err := a.sessions.NewSession(ctx, a.config.DataRoot)
	if err != nil {
		return fmt.Errorf("failed to open session: %w", err)
	}
	defer func() {
		if err := sess.Close(ctx); err != nil {
			a.logger.Warn("Closing session failed.", "error", err)
		}
	}()

	runner := sess.Runner()
	opts := []executor.Option{
		executor.WithPollInterval(a.config.PollInterval),
		executor.WithMetrics(a.metrics),
		executor.WithClock(a.now),
	}
	if a.pacer != nil {
		opts = append(opts, executor.WithPacer(a.pacer))
	}
	orch := executor.New(runner, runner, opts...)

	res, runErr := orch.Run(ctx, plan.Nodes, a.config.DataRoot, progress.Fanout{a.recorder, sinks})
	if res != nil && res.ConsoleOutput != "" {
		fmt.Fprintln(a.outW, res.ConsoleOutput)
	}
	if runErr != nil {
		return fmt.Errorf("pipeline run failed: %w", runErr)
	}
	if res.HasHistory {
		a.logger.Info("Training history available.", "path", res.HistoryPath)
	}

	a.logger.Debug("App.Run method finished.")
	return nil
}

// Plan picks the start node and builds the run order for doc.
//
// The start node is, in order of preference, the configured one, the one
// recorded in the document, or the first node without upstream edges.
func (a *App) Plan(ctx context.Context, doc *config.Document) (*dag.Plan, error) {
	logger := ctxlog.FromContext(ctx)

	if len(doc.Nodes) == 0 {
		return &dag.Plan{Reachable: map[string]struct{}{}}, nil
	}

	start := a.config.StartNodeID
	if start == "" {
		start = doc.StartNodeID
	}
	if start == "" {
		roots := dag.Roots(doc.Nodes, doc.Edges)
		if len(roots) == 0 {
			a.metrics.ObservePlan(0, ErrNoStartNode)
			return nil, ErrNoStartNode
		}
		start = roots[0].ID
		logger.Debug("No start node given, using first root.", "start", start)
	}

	plan, err := dag.BuildPlan(doc.Nodes, doc.Edges, start)
	a.metrics.ObservePlan(planSize(plan), err)
	if err != nil {
		return nil, err
	}
	logger.Info("Execution plan built.", "start", start, "steps", len(plan.Nodes), "order", plan.IDs())
	return plan, nil
}

func planSize(p *dag.Plan) int {
	if p == nil {
		return 0
	}
	return len(p.Nodes)
}

// printPlan writes the planned steps and their forge command lines.
func (a *App) printPlan(plan *dag.Plan) {
	translator := command.NewTranslator()
	var b strings.Builder
	fmt.Fprintf(&b, "Execution plan (%d steps):\n", len(plan.Nodes))
	for i, n := range plan.Nodes {
		fmt.Fprintf(&b, "  %s\n", executor.StepLabel(i, len(plan.Nodes), n))
		args, err := translator.Translate(n)
		if err != nil {
			fmt.Fprintf(&b, "      ! %v\n", err)
			continue
		}
		fmt.Fprintf(&b, "      $ %s\n", command.Line(args))
	}
	fmt.Fprint(a.outW, b.String())
}
