package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/specialistvlad/forgegrid/internal/config"
	"github.com/specialistvlad/forgegrid/internal/ctxlog"
	"github.com/specialistvlad/forgegrid/internal/localsession"
	"github.com/specialistvlad/forgegrid/internal/metrics"
	"github.com/specialistvlad/forgegrid/internal/nodeid"
	"github.com/specialistvlad/forgegrid/internal/progress"
	"github.com/specialistvlad/forgegrid/internal/registry"
	"github.com/specialistvlad/forgegrid/internal/scheduler"
	"github.com/specialistvlad/forgegrid/internal/session"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW   io.Writer
	logger *slog.Logger
	config *Config

	loader   *config.Dispatcher
	sinks    *registry.Registry
	sessions session.Factory
	pacer    scheduler.Pacer
	now      func() time.Time

	metricsRegistry *prometheus.Registry
	metrics         *metrics.Metrics
	recorder        *progress.Recorder

	httpServer *http.Server
}

// Option configures an App.
type Option func(*App)

// WithLogWriter sends log records to w instead of the console writer.
func WithLogWriter(w io.Writer) Option {
	return func(a *App) { a.logger = newLogger(a.config.LogLevel, a.config.LogFormat, w) }
}

// WithSessionFactory replaces the local forge session factory.
func WithSessionFactory(f session.Factory) Option {
	return func(a *App) { a.sessions = f }
}

// WithModules replaces the compiled-in progress sink modules.
func WithModules(modules ...registry.Module) Option {
	return func(a *App) { a.sinks = registry.New(modules...) }
}

// WithPacer replaces the timer between status polls.
func WithPacer(p scheduler.Pacer) Option {
	return func(a *App) { a.pacer = p }
}

// WithClock overrides the time source used for run timing and exports.
func WithClock(now func() time.Time) Option {
	return func(a *App) { a.now = now }
}

// NewApp is the constructor for the main application. Console output (the
// forge log of a run, dry-run plans, print sink lines) goes to outW, and so
// do log records unless WithLogWriter says otherwise.
func NewApp(outW io.Writer, cfg *Config, opts ...Option) *App {
	reg, m := metrics.NewRegistry()
	a := &App{
		outW:            outW,
		config:          cfg,
		loader:          newDispatcher(),
		now:             time.Now,
		metricsRegistry: reg,
		metrics:         m,
		recorder:        &progress.Recorder{},
	}
	a.logger = newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	for _, opt := range opts {
		opt(a)
	}
	if a.sinks == nil {
		a.sinks = registry.New(coreModules...)
	}
	if a.sessions == nil {
		ids, err := nodeid.NewGenerator(cfg.TaskIDFormat, TaskIDPrefix)
		if err != nil {
			a.logger.Warn("Falling back to sequential task ids.", "error", err)
			ids = nodeid.NewSequence(TaskIDPrefix)
		}
		a.sessions = &localsession.Factory{
			Manager:  session.NewManager(),
			ForgeBin: cfg.ForgeBin,
			WorkDir:  cfg.WorkDir,
			IDs:      ids,
		}
	}
	a.logger.Debug("App configured.", "sinks", a.sinks.Names(), "formats", a.loader.Formats())
	return a
}

// Context returns ctx carrying the app's logger.
func (a *App) Context(ctx context.Context) context.Context {
	return ctxlog.WithLogger(ctx, a.logger)
}

// Recorder returns the sink holding the latest progress snapshot.
func (a *App) Recorder() *progress.Recorder {
	return a.recorder
}

// MetricsRegistry returns the registry behind /metrics. This is primarily
// for testing.
func (a *App) MetricsRegistry() *prometheus.Registry {
	return a.metricsRegistry
}
