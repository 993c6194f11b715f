package socketio

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/forgegrid/internal/progress"
	"github.com/specialistvlad/forgegrid/internal/registry"
)

type fakeClient struct {
	events []string
	args   []any
	err    error
	closed bool
}

func (c *fakeClient) Emit(event string, args ...any) error {
	c.events = append(c.events, event)
	c.args = append(c.args, args...)
	return c.err
}

func (c *fakeClient) Close() error {
	c.closed = true
	return nil
}

func TestSink_EmitsSnapshots(t *testing.T) {
	client := &fakeClient{}
	s := New(client, "")

	snap := progress.Snapshot{Running: true, StepLabel: "Step 1/1: Train", OverallPercent: 40}
	s.Publish(context.Background(), snap)

	assert.Equal(t, []string{DefaultEvent}, client.events)
	require.Len(t, client.args, 1)
	assert.Equal(t, snap, client.args[0])

	require.NoError(t, s.Close())
	assert.True(t, client.closed)
}

func TestSink_EmitFailureDoesNotPanic(t *testing.T) {
	client := &fakeClient{err: errors.New("socket closed")}
	s := New(client, "forge:progress")

	s.Publish(context.Background(), progress.Snapshot{})
	s.Publish(context.Background(), progress.Snapshot{})
	assert.Equal(t, []string{"forge:progress", "forge:progress"}, client.events)
	assert.True(t, s.failed)
}

func TestDial_RequiresURL(t *testing.T) {
	_, err := Dial(context.Background(), DialConfig{})
	assert.ErrorIs(t, err, ErrMissingURL)

	r := registry.New(&Module{})
	_, err = r.Build(context.Background(), []string{Name}, registry.Options{})
	assert.ErrorIs(t, err, ErrMissingURL)
}

func TestDial_UnreachableServer(t *testing.T) {
	// Grab a free port and close it so nothing is listening there.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	start := time.Now()
	_, err = Dial(context.Background(), DialConfig{URL: "http://" + addr + "/socket.io/", Timeout: 2 * time.Second})
	require.Error(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)
}
