// Package log reports run progress through the structured logger carried in
// the context.
package log

import (
	"context"
	"math"

	"github.com/specialistvlad/forgegrid/internal/ctxlog"
	"github.com/specialistvlad/forgegrid/internal/progress"
	"github.com/specialistvlad/forgegrid/internal/registry"
)

// Name is the sink name used with -progress.
const Name = "log"

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the log sink with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterSink(Name, &registry.RegisteredSink{
		Description: "structured log records",
		New: func(context.Context, registry.Options) (progress.Sink, error) {
			return New(), nil
		},
	})
}

// Sink logs the first snapshot of every step and the final snapshot at Info.
// Every other tick goes to Debug.
type Sink struct {
	lastLabel string
}

// New creates a log sink.
func New() *Sink {
	return &Sink{}
}

var _ progress.Sink = (*Sink)(nil)

// Publish implements progress.Sink.
func (s *Sink) Publish(ctx context.Context, snap progress.Snapshot) {
	logger := ctxlog.FromContext(ctx)
	attrs := []any{
		"step", snap.StepLabel,
		"overall_percent", round1(snap.OverallPercent),
		"elapsed_seconds", snap.ElapsedSeconds,
		"remaining_seconds", snap.RemainingSeconds,
	}

	if !snap.Running {
		logger.Info("🏁 Pipeline progress complete.", attrs...)
		s.lastLabel = ""
		return
	}

	attrs = append(attrs,
		"step_percent", round1(snap.StepPercent),
		"step_remaining_seconds", snap.StepRemainingSeconds,
	)
	if snap.StepLabel != s.lastLabel {
		s.lastLabel = snap.StepLabel
		logger.Info("Step progress.", attrs...)
		return
	}
	logger.Debug("Step progress.", attrs...)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
