// Package metrics holds the Prometheus collectors for pipeline planning and
// runs. All recording methods are safe to call on a nil *Metrics, which
// records nothing.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome label values.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Metrics holds all Prometheus metrics for forgegrid.
type Metrics struct {
	Plans        *prometheus.CounterVec
	PlannedSteps prometheus.Histogram

	Runs        *prometheus.CounterVec
	RunDuration *prometheus.HistogramVec
	ActiveRuns  prometheus.Gauge

	Steps        *prometheus.CounterVec
	StepDuration *prometheus.HistogramVec
	Polls        prometheus.Counter
}

// NewMetrics creates the collectors and registers them with registry.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	factory := promauto.With(registry)

	return &Metrics{
		Plans: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "forgegrid_plans_total",
				Help: "Total number of execution plans built",
			},
			[]string{"outcome"},
		),
		PlannedSteps: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "forgegrid_plan_steps",
				Help:    "Number of steps in successfully built plans",
				Buckets: []float64{1, 2, 3, 5, 8, 13, 21, 50},
			},
		),
		Runs: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "forgegrid_runs_total",
				Help: "Total number of pipeline runs",
			},
			[]string{"outcome"},
		),
		RunDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "forgegrid_run_duration_seconds",
				Help:    "Pipeline run duration in seconds",
				Buckets: []float64{1, 10, 30, 60, 300, 900, 1800, 3600},
			},
			[]string{"outcome"},
		),
		ActiveRuns: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "forgegrid_active_runs",
				Help: "Number of pipeline runs in progress",
			},
		),
		Steps: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "forgegrid_steps_total",
				Help: "Total number of pipeline steps run",
			},
			[]string{"type", "outcome"},
		),
		StepDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "forgegrid_step_duration_seconds",
				Help:    "Pipeline step duration in seconds",
				Buckets: []float64{1, 5, 15, 30, 60, 120, 240, 600, 1800},
			},
			[]string{"type"},
		),
		Polls: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "forgegrid_status_polls_total",
				Help: "Total number of task status polls",
			},
		),
	}
}

// NewRegistry creates a fresh registry with metrics registered on it.
func NewRegistry() (*prometheus.Registry, *Metrics) {
	reg := prometheus.NewRegistry()
	return reg, NewMetrics(reg)
}

// HandlerFor returns the /metrics handler for a registry.
func HandlerFor(reg prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

// ObservePlan records the outcome of building a plan.
func (m *Metrics) ObservePlan(steps int, err error) {
	if m == nil {
		return
	}
	m.Plans.WithLabelValues(outcome(err)).Inc()
	if err == nil {
		m.PlannedSteps.Observe(float64(steps))
	}
}

// RunStarted marks a run as active.
func (m *Metrics) RunStarted() {
	if m == nil {
		return
	}
	m.ActiveRuns.Inc()
}

// RunFinished records a run's outcome and clears it from the active gauge.
func (m *Metrics) RunFinished(d time.Duration, err error) {
	if m == nil {
		return
	}
	m.ActiveRuns.Dec()
	o := outcome(err)
	m.Runs.WithLabelValues(o).Inc()
	m.RunDuration.WithLabelValues(o).Observe(d.Seconds())
}

// StepFinished records one step.
func (m *Metrics) StepFinished(nodeType string, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.Steps.WithLabelValues(nodeType, outcome(err)).Inc()
	m.StepDuration.WithLabelValues(nodeType).Observe(d.Seconds())
}

// PollObserved counts one status poll.
func (m *Metrics) PollObserved() {
	if m == nil {
		return
	}
	m.Polls.Inc()
}

func outcome(err error) string {
	if err != nil {
		return OutcomeFailure
	}
	return OutcomeSuccess
}
