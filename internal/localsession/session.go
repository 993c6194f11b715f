// Package localsession provides a concrete implementation of the
// session.Session and session.Factory interfaces for local, in-process runs.
package localsession

import (
	"context"

	"github.com/specialistvlad/forgegrid/internal/ctxlog"
	"github.com/specialistvlad/forgegrid/internal/inmemorystore"
	"github.com/specialistvlad/forgegrid/internal/localexecutor"
	"github.com/specialistvlad/forgegrid/internal/nodeid"
	"github.com/specialistvlad/forgegrid/internal/session"
	"github.com/specialistvlad/forgegrid/internal/task"
)

// Factory implements session.Factory for local runs.
type Factory struct {
	// Manager tracks in-process runs per data root. Nil uses a fresh one;
	// the data root file lock still applies.
	Manager  *session.Manager
	ForgeBin string
	WorkDir  string
	// IDs mints task ids. Nil uses forge-task-N.
	IDs nodeid.Generator
}

var _ session.Factory = (*Factory)(nil)

// NewSession claims dataRoot and wires a local executor for the run.
func (f *Factory) NewSession(ctx context.Context, dataRoot string) (session.Session, error) {
	logger := ctxlog.FromContext(ctx)

	mgr := f.Manager
	if mgr == nil {
		mgr = session.NewManager()
	}
	tok, err := mgr.Acquire(dataRoot)
	if err != nil {
		return nil, err
	}
	logger.Debug("Local session opened.", "data_root", tok.DataRoot())

	opts := []localexecutor.Option{
		localexecutor.WithStore(inmemorystore.New()),
		localexecutor.WithForgeBin(f.ForgeBin),
		localexecutor.WithWorkDir(f.WorkDir),
	}
	if f.IDs != nil {
		opts = append(opts, localexecutor.WithIDGenerator(f.IDs))
	}

	return &Session{
		token:  tok,
		runner: localexecutor.New(opts...),
	}, nil
}

// Session implements session.Session for local runs.
type Session struct {
	token  *session.Token
	runner *localexecutor.Executor
}

// Runner returns the local executor wired by the factory.
func (s *Session) Runner() task.Runner {
	return s.runner
}

// Close waits for in-flight processes, bounded by ctx, and releases the
// data root.
func (s *Session) Close(ctx context.Context) error {
	defer s.token.Release()
	ctxlog.FromContext(ctx).Debug("Local session closing.", "data_root", s.token.DataRoot())
	return s.runner.Wait(ctx)
}
