// Package memory implements chatflow.Store in process memory. It is the
// default backend for the CLI and for tests.
package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/meikuraledutech/chatflow"
)

// Store keeps deep copies of saved flows keyed by id.
type Store struct {
	mu    sync.RWMutex
	flows map[string]chatflow.Flow
}

// New returns an empty Store.
func New() *Store {
	return &Store{flows: make(map[string]chatflow.Flow)}
}

// CreateSchema is a no-op.
func (s *Store) CreateSchema(context.Context) error { return nil }

// DropSchema forgets every flow.
func (s *Store) DropSchema(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.flows)
	return nil
}

func (s *Store) SaveFlow(_ context.Context, f *chatflow.Flow) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flows[f.ID] = f.Clone()
	return nil
}

func (s *Store) GetFlow(_ context.Context, id string) (*chatflow.Flow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.flows[id]
	if !ok {
		return nil, chatflow.ErrFlowNotFound
	}
	out := f.Clone()
	return &out, nil
}

func (s *Store) DeleteFlow(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.flows, id)
	return nil
}

func (s *Store) ListFlows(context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.flows))
	for id := range s.flows {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}
