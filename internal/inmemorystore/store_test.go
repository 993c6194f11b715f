package inmemorystore

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/forgegrid/internal/task"
	"github.com/specialistvlad/forgegrid/internal/taskstore"
)

func TestInsertAndGet(t *testing.T) {
	s := New()
	ctx := context.Background()

	_, err := s.Get(ctx, "forge-task-1")
	assert.ErrorIs(t, err, taskstore.ErrTaskNotFound)

	args := []string{"train", "--dataset", "demo"}
	require.NoError(t, s.Insert(ctx, taskstore.Record{ID: "forge-task-1", Command: "train", Args: args, State: task.Running}))

	// The store must not alias the caller's slice.
	args[0] = "mutated"

	rec, err := s.Get(ctx, "forge-task-1")
	require.NoError(t, err)
	assert.Equal(t, "train", rec.Args[0])
	assert.Equal(t, task.Running, rec.State)
}

func TestUpdate(t *testing.T) {
	s := New()
	ctx := context.Background()
	require.NoError(t, s.Insert(ctx, taskstore.Record{ID: "t", State: task.Running}))

	err := s.Update(ctx, "t", func(r *taskstore.Record) {
		r.Stdout += "line one\n"
		code := 0
		r.ExitCode = &code
		r.State = task.Completed
	})
	require.NoError(t, err)

	rec, err := s.Get(ctx, "t")
	require.NoError(t, err)
	assert.Equal(t, "line one\n", rec.Stdout)
	require.NotNil(t, rec.ExitCode)
	assert.Equal(t, 0, *rec.ExitCode)

	// Returned copies are detached.
	*rec.ExitCode = 9
	again, _ := s.Get(ctx, "t")
	assert.Equal(t, 0, *again.ExitCode)

	assert.ErrorIs(t, s.Update(ctx, "missing", func(*taskstore.Record) {}), taskstore.ErrTaskNotFound)
}

func TestPrune_EvictsSmallestFinishedIDs(t *testing.T) {
	s := NewWithLimit(3)
	ctx := context.Background()

	require.NoError(t, s.Insert(ctx, taskstore.Record{ID: "a", State: task.Running}))
	require.NoError(t, s.Insert(ctx, taskstore.Record{ID: "c", State: task.Completed}))
	require.NoError(t, s.Insert(ctx, taskstore.Record{ID: "b", State: task.Failed}))
	require.NoError(t, s.Insert(ctx, taskstore.Record{ID: "d", State: task.Completed}))

	assert.Equal(t, 3, s.Len())
	_, err := s.Get(ctx, "b")
	assert.ErrorIs(t, err, taskstore.ErrTaskNotFound, "b is the smallest finished id")
	_, err = s.Get(ctx, "a")
	assert.NoError(t, err, "running records are never evicted")
}

func TestPrune_KeepsRunningRecordsOverLimit(t *testing.T) {
	s := NewWithLimit(1)
	ctx := context.Background()
	require.NoError(t, s.Insert(ctx, taskstore.Record{ID: "x", State: task.Running}))
	require.NoError(t, s.Insert(ctx, taskstore.Record{ID: "y", State: task.Running}))
	assert.Equal(t, 2, s.Len())
}

func TestDurations(t *testing.T) {
	s := New()
	ctx := context.Background()

	_, ok := s.AverageDuration(ctx, "train")
	assert.False(t, ok)

	require.NoError(t, s.ObserveDuration(ctx, "train", 100))
	avg, ok := s.AverageDuration(ctx, "train")
	require.True(t, ok)
	assert.Equal(t, 100.0, avg)

	require.NoError(t, s.ObserveDuration(ctx, "train", 200))
	avg, _ = s.AverageDuration(ctx, "train")
	assert.InDelta(t, 130.0, avg, 1e-9)
}

// TestStore_ConcurrentAccess exercises writers and readers on disjoint ids.
func TestStore_ConcurrentAccess(t *testing.T) {
	s := NewWithLimit(1000)
	ctx := context.Background()
	const n = 100
	var wg sync.WaitGroup

	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("task-%03d", i)
			_ = s.Insert(ctx, taskstore.Record{ID: id, State: task.Running})
			_ = s.Update(ctx, id, func(r *taskstore.Record) { r.Stdout = id })
			_ = s.ObserveDuration(ctx, "ingest", float64(i))
		}(i)
	}
	wg.Wait()

	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("task-%03d", i)
			rec, err := s.Get(ctx, id)
			assert.NoError(t, err)
			assert.Equal(t, id, rec.Stdout)
		}(i)
	}
	wg.Wait()
}
