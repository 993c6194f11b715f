// Package inmemorystore provides an ephemeral, thread-safe, in-memory
// implementation of the taskstore.Store interface.
//
// # Concurrency Model
//
// Unlike the node state stores that favour sync.Map, task records are small
// and updated by exactly one process goroutine while a single poller reads
// them, so one mutex per map is enough. Records are copied on the way in and
// out, so callers never share memory with the store.
//
// # Eviction
//
// Once more than maxRecords records are held, finished records are evicted in
// lexicographic id order until the store is back at its bound. Running
// records are never evicted.
package inmemorystore

import (
	"context"
	"sort"
	"sync"

	"github.com/specialistvlad/forgegrid/internal/taskstore"
)

// Store is an in-memory implementation of taskstore.Store.
type Store struct {
	maxRecords int

	mu      sync.Mutex
	records map[string]*taskstore.Record

	durMu     sync.Mutex
	durations map[string]float64
}

// New creates an empty store bounded to taskstore.DefaultMaxRecords.
func New() *Store {
	return NewWithLimit(taskstore.DefaultMaxRecords)
}

// NewWithLimit creates an empty store that keeps at most maxRecords finished
// records. A non-positive limit falls back to the default.
func NewWithLimit(maxRecords int) *Store {
	if maxRecords <= 0 {
		maxRecords = taskstore.DefaultMaxRecords
	}
	return &Store{
		maxRecords: maxRecords,
		records:    make(map[string]*taskstore.Record),
		durations:  make(map[string]float64),
	}
}

var _ taskstore.Store = (*Store)(nil)

// Insert adds rec, replacing any record with the same id, then prunes.
func (s *Store) Insert(ctx context.Context, rec taskstore.Record) error {
	cp := rec.Clone()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.ID] = &cp
	s.prune()
	return nil
}

// Get returns a copy of the record with the given id.
func (s *Store) Get(ctx context.Context, id string) (taskstore.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[id]
	if !ok {
		return taskstore.Record{}, taskstore.ErrTaskNotFound
	}
	return rec.Clone(), nil
}

// Update mutates the stored record in place.
func (s *Store) Update(ctx context.Context, id string, fn func(*taskstore.Record)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[id]
	if !ok {
		return taskstore.ErrTaskNotFound
	}
	fn(rec)
	return nil
}

// Len returns the number of records currently held.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// AverageDuration returns the smoothed duration recorded for command.
func (s *Store) AverageDuration(ctx context.Context, command string) (float64, bool) {
	s.durMu.Lock()
	defer s.durMu.Unlock()
	avg, ok := s.durations[command]
	return avg, ok
}

// ObserveDuration folds seconds into command's moving average.
func (s *Store) ObserveDuration(ctx context.Context, command string, seconds float64) error {
	s.durMu.Lock()
	defer s.durMu.Unlock()
	current, ok := s.durations[command]
	s.durations[command] = taskstore.Smooth(current, ok, seconds)
	return nil
}

// prune must be called with mu held.
func (s *Store) prune() {
	excess := len(s.records) - s.maxRecords
	if excess <= 0 {
		return
	}
	removable := make([]string, 0, len(s.records))
	for id, rec := range s.records {
		if rec.State.Terminal() {
			removable = append(removable, id)
		}
	}
	sort.Strings(removable)
	if len(removable) > excess {
		removable = removable[:excess]
	}
	for _, id := range removable {
		delete(s.records, id)
	}
}
