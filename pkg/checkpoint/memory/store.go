// Package memory is the in-memory baseline Checkpointer. It is the
// required minimum implementation; a persistent backend is a drop-in
// replacement.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/ospreyai/osprey/pkg/state"
)

type key struct {
	threadID string
	checkpointNS string
}

type entry struct {
	snapshot state.State
	updatedAt time.Time
}

// Store is a mutex-guarded map satisfying checkpoint.Checkpointer and
// checkpoint.Sweeper. Safe for concurrent conversations running in
// parallel.
type Store struct {
	mu sync.RWMutex
	data map[key]entry
}

// New returns an empty Store.
func New() *Store {
	return &Store{data: map[key]entry{}}
}

func (s *Store) Save(_ context.Context, threadID, checkpointNS string, snapshot state.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key{threadID, checkpointNS}] = entry{snapshot: snapshot, updatedAt: time.Now()}
	return nil
}

func (s *Store) Load(_ context.Context, threadID, checkpointNS string) (state.State, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.data[key{threadID, checkpointNS}]
	return e.snapshot, ok, nil
}

func (s *Store) Delete(_ context.Context, threadID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k := range s.data {
 if k.threadID == threadID {
 delete(s.data, k)
 }
	}
	return nil
}

// Sweep implements checkpoint.Sweeper, deleting every checkpoint last
// saved before olderThan.
func (s *Store) Sweep(_ context.Context, olderThan time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for k, e := range s.data {
 if e.updatedAt.Before(olderThan) {
 delete(s.data, k)
 removed++
 }
	}
	return removed, nil
}
