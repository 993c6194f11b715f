// Package socketio publishes run progress as socket.io events, so a studio
// UI or dashboard can follow a run live.
package socketio

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"

	"github.com/specialistvlad/forgegrid/internal/ctxlog"
	"github.com/specialistvlad/forgegrid/internal/progress"
	"github.com/specialistvlad/forgegrid/internal/registry"
)

// Name is the sink name used with -progress.
const Name = "socketio"

const (
	// DefaultEvent is the event name snapshots are emitted under.
	DefaultEvent = "progress"
	// DefaultNamespace is the namespace joined when none is configured.
	DefaultNamespace = "/"

	defaultConnectTimeout = 10 * time.Second
)

// ErrMissingURL is returned when the sink is requested without a server URL.
var ErrMissingURL = errors.New("socketio progress sink requires a server URL")

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the socketio sink with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterSink(Name, &registry.RegisteredSink{
		Description: "socket.io events for live dashboards",
		New: func(ctx context.Context, opts registry.Options) (progress.Sink, error) {
			client, err := Dial(ctx, DialConfig{URL: opts.SocketIOURL, Namespace: opts.SocketIONamespace})
			if err != nil {
				return nil, err
			}
			return New(client, opts.SocketIOEvent), nil
		},
	})
}

// Client is the part of a socket.io connection the sink uses.
type Client interface {
	Emit(event string, args ...any) error
	Close() error
}

// DialConfig describes the server to connect to.
type DialConfig struct {
	URL                string
	Namespace          string
	InsecureSkipVerify bool
	// Timeout bounds the wait for the initial connection. Zero means ten
	// seconds.
	Timeout time.Duration
}

// Dial connects to a socket.io server over websocket and waits until the
// namespace is joined.
func Dial(ctx context.Context, cfg DialConfig) (Client, error) {
	if cfg.URL == "" {
		return nil, ErrMissingURL
	}
	if cfg.Namespace == "" {
		cfg.Namespace = DefaultNamespace
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultConnectTimeout
	}

	logger := ctxlog.FromContext(ctx).With("sink", Name, "url", cfg.URL, "namespace", cfg.Namespace)

	parsedURL, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}

	opts := socket.DefaultOptions()
	opts.SetPath(parsedURL.Path)
	opts.SetReconnection(false)
	if cfg.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	connected := make(chan error, 1)

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(cfg.Namespace, opts)

	io.Once(types.EventName("connect"), func(...any) {
		logger.Info("Progress socket connected.", "sid", io.Id())
		select {
		case connected <- nil:
		default:
		}
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		err := errors.New("connect_error")
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = e
			}
		}
		select {
		case connected <- err:
		default:
		}
	})

	logger.Debug("Connecting progress socket.")
	io.Connect()

	timer := time.NewTimer(cfg.Timeout)
	defer timer.Stop()

	select {
	case err := <-connected:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("socket.io connection failed: %w", err)
		}
		return &socketClient{io: io}, nil
	case <-ctx.Done():
		io.Disconnect()
		return nil, fmt.Errorf("waiting for socket.io connection: %w", ctx.Err())
	case <-timer.C:
		io.Disconnect()
		return nil, fmt.Errorf("timed out after %s waiting for socket.io connection", cfg.Timeout)
	}
}

type socketClient struct {
	io *socket.Socket
}

func (c *socketClient) Emit(event string, args ...any) error {
	return c.io.Emit(event, args...)
}

func (c *socketClient) Close() error {
	c.io.Disconnect()
	return nil
}

// Sink emits every snapshot as one event.
type Sink struct {
	client Client
	event  string
	failed bool
}

// New creates a sink emitting on client. An empty event means DefaultEvent.
func New(client Client, event string) *Sink {
	if event == "" {
		event = DefaultEvent
	}
	return &Sink{client: client, event: event}
}

var _ progress.Sink = (*Sink)(nil)

// Publish implements progress.Sink. Emit failures are logged once and never
// interrupt the run.
func (s *Sink) Publish(ctx context.Context, snap progress.Snapshot) {
	if err := s.client.Emit(s.event, snap); err != nil {
		logger := ctxlog.FromContext(ctx)
		if !s.failed {
			logger.Warn("Failed to emit progress event.", "event", s.event, "error", err)
		} else {
			logger.Debug("Failed to emit progress event.", "event", s.event, "error", err)
		}
		s.failed = true
	}
}

// Close disconnects the client.
func (s *Sink) Close() error {
	return s.client.Close()
}
