package executor

import (
	"context"
	"fmt"
	"strings"

	"github.com/specialistvlad/forgegrid/internal/command"
	"github.com/specialistvlad/forgegrid/internal/ctxlog"
	"github.com/specialistvlad/forgegrid/internal/node"
	"github.com/specialistvlad/forgegrid/internal/progress"
	"github.com/specialistvlad/forgegrid/internal/task"
)

// StepLabel is the human readable label of step i (zero based) of count.
func StepLabel(i, count int, n node.Node) string {
	return fmt.Sprintf("Step %d/%d: %s", i+1, count, n.Label())
}

// runStep takes one node from translation to terminal status.
func (o *Orchestrator) runStep(ctx context.Context, r *run, i int, n node.Node) error {
	count := len(r.nodes)
	label := StepLabel(i, count, n)
	ctx, logger := ctxlog.With(ctx, "step", i+1, "node_id", n.ID)
	stepStart := o.now()

	args, err := o.translator.Translate(n)
	if err != nil {
		return fmt.Errorf("translating %s: %w", label, err)
	}
	line := command.Line(args)

	start, err := o.launcher.Submit(ctx, r.dataRoot, args)
	if err != nil {
		o.metrics.StepFinished(string(n.Type), o.now().Sub(stepStart), err)
		return fmt.Errorf("submitting %s: %w", label, err)
	}
	r.estimates.Observe(i, start.EstimatedTotalSeconds)
	logger.Info("Step submitted.", "task_id", start.TaskID, "command", line, "estimate_seconds", r.estimates.Step(i))

	st, err := o.await(ctx, r, i, label, start.TaskID)
	if err != nil {
		o.metrics.StepFinished(string(n.Type), o.now().Sub(stepStart), err)
		return fmt.Errorf("polling %s: %w", label, err)
	}

	r.console = append(r.console, consoleEntry(line, st))
	if path, ok := ScanHistoryPath(st.Stdout); ok {
		r.historyPath, r.hasHistory = path, true
		logger.Debug("History path recorded.", "history_path", path)
	}

	if !st.Succeeded() {
		failure := &StepFailedError{
			NodeID:   n.ID,
			Step:     label,
			Command:  line,
			Stderr:   strings.TrimSpace(st.Stderr),
			ExitCode: st.ExitCode,
			State:    st.State,
			Result:   r.result(),
		}
		o.metrics.StepFinished(string(n.Type), o.now().Sub(stepStart), failure)
		return failure
	}

	o.metrics.StepFinished(string(n.Type), o.now().Sub(stepStart), nil)
	logger.Info("Step finished.", "task_id", start.TaskID, "elapsed_seconds", st.ElapsedSeconds)
	return nil
}

// await polls taskID until it leaves the running state, publishing one
// snapshot per poll. The pacer is the loop's only suspension point besides
// the poll itself.
func (o *Orchestrator) await(ctx context.Context, r *run, i int, label, taskID string) (task.Status, error) {
	count := len(r.nodes)
	for {
		st, err := o.status.Poll(ctx, taskID)
		if err != nil {
			return task.Status{}, err
		}
		o.metrics.PollObserved()

		running := st.State == task.Running
		stepPercent := st.ProgressPercent
		stepRemaining := st.RemainingSeconds
		if !running {
			stepPercent = 100
			stepRemaining = 0
		}

		r.sink.Publish(ctx, progress.Snapshot{
			Running:              true,
			OverallPercent:       progress.OverallPercent(i, count, stepPercent),
			ElapsedSeconds:       o.elapsed(r.startedAt),
			RemainingSeconds:     r.estimates.Remaining(i, stepRemaining),
			StepLabel:            label,
			StepPercent:          stepPercent,
			StepElapsedSeconds:   st.ElapsedSeconds,
			StepRemainingSeconds: stepRemaining,
			StepIndex:            i,
			StepCount:            count,
		})

		if !running {
			return st, nil
		}
		if err := o.pacer.Wait(ctx, o.pollInterval); err != nil {
			return task.Status{}, err
		}
	}
}

func consoleEntry(line string, st task.Status) string {
	parts := []string{"$ " + line}
	if out := strings.TrimSpace(st.Stdout); out != "" {
		parts = append(parts, out)
	}
	if errOut := strings.TrimSpace(st.Stderr); errOut != "" {
		parts = append(parts, errOut)
	}
	return strings.Join(parts, "\n")
}
