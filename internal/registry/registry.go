package registry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"

	"github.com/specialistvlad/forgegrid/internal/ctxlog"
	"github.com/specialistvlad/forgegrid/internal/progress"
)

// ErrUnknownSink is returned when a requested sink name was never registered.
var ErrUnknownSink = errors.New("unknown progress sink")

// Module is the interface that all sink modules must implement to be registered.
type Module interface {
	Register(r *Registry)
}

// Options carries the settings sink factories may need.
type Options struct {
	// Out is where console sinks write. Defaults to io.Discard.
	Out io.Writer

	SocketIOURL       string
	SocketIONamespace string
	SocketIOEvent     string
}

// RegisteredSink holds a sink module's factory.
type RegisteredSink struct {
	Description string
	New         func(ctx context.Context, opts Options) (progress.Sink, error)
}

// Registry holds the registered sink factories for a single application
// instance.
type Registry struct {
	sinks map[string]*RegisteredSink
}

// New creates a Registry and registers every module passed in.
func New(modules ...Module) *Registry {
	r := &Registry{sinks: make(map[string]*RegisteredSink)}
	for _, m := range modules {
		m.Register(r)
	}
	return r
}

// RegisterSink registers a named sink factory.
func (r *Registry) RegisterSink(name string, sink *RegisteredSink) {
	if _, exists := r.sinks[name]; exists {
		panic(fmt.Sprintf("progress sink with name '%s' already registered", name))
	}
	if sink == nil || sink.New == nil {
		panic(fmt.Sprintf("progress sink '%s' has no factory", name))
	}
	slog.Debug("Registering progress sink.", "name", name)
	r.sinks[name] = sink
}

// Names lists the registered sink names in sorted order.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.sinks))
	for name := range r.sinks {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Validate checks that every name is registered.
func (r *Registry) Validate(names []string) error {
	var unknown []string
	for _, name := range names {
		if _, ok := r.sinks[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		return fmt.Errorf("%w: %s (available: %s)", ErrUnknownSink,
			strings.Join(unknown, ", "), strings.Join(r.Names(), ", "))
	}
	return nil
}

// Build creates the named sinks in order and combines them into one Set.
// Sinks already created are closed when a later one fails.
func (r *Registry) Build(ctx context.Context, names []string, opts Options) (*Set, error) {
	if err := r.Validate(names); err != nil {
		return nil, err
	}
	if opts.Out == nil {
		opts.Out = io.Discard
	}

	logger := ctxlog.FromContext(ctx)
	set := &Set{}
	for _, name := range names {
		sink, err := r.sinks[name].New(ctx, opts)
		if err != nil {
			_ = set.Close()
			return nil, fmt.Errorf("creating progress sink %q: %w", name, err)
		}
		logger.Debug("Progress sink created.", "name", name)
		set.names = append(set.names, name)
		set.sinks = append(set.sinks, sink)
	}
	return set, nil
}

// Set is a group of built sinks. It publishes to each in build order and
// closes those that hold resources.
type Set struct {
	names []string
	sinks progress.Fanout
}

var _ progress.Sink = (*Set)(nil)

// Publish implements progress.Sink.
func (s *Set) Publish(ctx context.Context, snap progress.Snapshot) {
	s.sinks.Publish(ctx, snap)
}

// Names lists the sinks in the set.
func (s *Set) Names() []string {
	return append([]string(nil), s.names...)
}

// Close closes every sink implementing io.Closer, in reverse build order.
func (s *Set) Close() error {
	var errs []error
	for i := len(s.sinks) - 1; i >= 0; i-- {
		if c, ok := s.sinks[i].(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, fmt.Errorf("closing progress sink %q: %w", s.names[i], err))
			}
		}
	}
	return errors.Join(errs...)
}
