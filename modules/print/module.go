// Package print renders run progress as plain console lines.
package print

import (
	"context"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/specialistvlad/forgegrid/internal/progress"
	"github.com/specialistvlad/forgegrid/internal/registry"
)

// Name is the sink name used with -progress.
const Name = "print"

const (
	barWidth   = 20
	bucketSize = 10.0
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the print sink with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterSink(Name, &registry.RegisteredSink{
		Description: "progress bar lines on the console",
		New: func(_ context.Context, opts registry.Options) (progress.Sink, error) {
			return New(opts.Out), nil
		},
	})
}

// Sink writes one line when a step starts, each time overall progress
// crosses a ten percent mark, and once when the run completes.
type Sink struct {
	out io.Writer

	barStyle   lipgloss.Style
	doneStyle  lipgloss.Style
	labelStyle lipgloss.Style
	dimStyle   lipgloss.Style

	lastLabel  string
	lastBucket int
}

// New creates a print sink writing to out. Colors are used only when out is
// a terminal.
func New(out io.Writer) *Sink {
	r := lipgloss.NewRenderer(out)
	return &Sink{
		out:        out,
		barStyle:   r.NewStyle().Foreground(lipgloss.Color("214")),
		doneStyle:  r.NewStyle().Foreground(lipgloss.Color("42")).Bold(true),
		labelStyle: r.NewStyle().Bold(true),
		dimStyle:   r.NewStyle().Foreground(lipgloss.Color("241")),
		lastBucket: -1,
	}
}

var _ progress.Sink = (*Sink)(nil)

// Publish implements progress.Sink.
func (s *Sink) Publish(_ context.Context, snap progress.Snapshot) {
	bucket := int(math.Floor(snap.OverallPercent / bucketSize))
	if snap.Running && snap.StepLabel == s.lastLabel && bucket <= s.lastBucket {
		return
	}
	s.lastLabel = snap.StepLabel
	s.lastBucket = bucket
	fmt.Fprintln(s.out, s.Render(snap))
}

// Render formats a snapshot as a single line.
func (s *Sink) Render(snap progress.Snapshot) string {
	filled := int(math.Round(snap.OverallPercent / 100 * barWidth))
	filled = min(max(filled, 0), barWidth)
	bar := "[" + strings.Repeat("#", filled) + strings.Repeat(".", barWidth-filled) + "]"

	percent := fmt.Sprintf("%5.1f%%", snap.OverallPercent)
	if !snap.Running {
		return fmt.Sprintf("%s %s %s %s",
			s.doneStyle.Render(bar), percent, s.labelStyle.Render(snap.StepLabel),
			s.dimStyle.Render("in "+formatSeconds(snap.ElapsedSeconds)))
	}
	return fmt.Sprintf("%s %s %s %s",
		s.barStyle.Render(bar), percent, s.labelStyle.Render(snap.StepLabel),
		s.dimStyle.Render("eta "+formatSeconds(snap.RemainingSeconds)))
}

// formatSeconds renders seconds as "12s" below a minute and "2m30s" above.
func formatSeconds(secs int64) string {
	d := time.Duration(max(secs, 0)) * time.Second
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	minutes := int(d.Minutes())
	return fmt.Sprintf("%dm%ds", minutes, int(d.Seconds())-minutes*60)
}
