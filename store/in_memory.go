package store

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/hupe1980/pantrymesh/core"
)

type entry struct {
	fact      core.Fact
	available bool
}

// InMemoryStore is a process-local Store protected by an RWMutex.
type InMemoryStore struct {
	mu     sync.RWMutex
	byID   map[string]*entry
	byName map[string]string // name key -> id
}

// NewInMemoryStore creates a store preloaded with the given available names.
func NewInMemoryStore(names ...string) *InMemoryStore {
	s := &InMemoryStore{byID: make(map[string]*entry), byName: make(map[string]string)}
	for _, n := range names {
		_, _ = s.Put(context.Background(), n)
	}
	return s
}

// AvailableFacts returns the available facts sorted by name.
func (s *InMemoryStore) AvailableFacts(ctx context.Context) ([]core.Fact, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Fact, 0, len(s.byID))
	for _, e := range s.byID {
		if e.available {
			out = append(out, e.fact)
		}
	}
	sort.Slice(out, func(i, j int) bool { return nameKey(out[i].Name) < nameKey(out[j].Name) })
	return out, nil
}

// Put implements Store.
func (s *InMemoryStore) Put(_ context.Context, name string) (core.Fact, error) {
	name, err := cleanName(name)
	if err != nil {
		return core.Fact{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.byName[nameKey(name)]; ok {
		e := s.byID[id]
		e.available = true
		return e.fact, nil
	}
	f := core.Fact{ID: uuid.NewString(), Name: name}
	s.byID[f.ID] = &entry{fact: f, available: true}
	s.byName[nameKey(name)] = f.ID
	return f, nil
}

// SetAvailable implements Store.
func (s *InMemoryStore) SetAvailable(_ context.Context, id string, available bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.byID[id]
	if !ok {
		return ErrNotFound
	}
	e.available = available
	return nil
}

// Delete implements Store.
func (s *InMemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.byID[id]
	if !ok {
		return ErrNotFound
	}
	delete(s.byName, nameKey(e.fact.Name))
	delete(s.byID, id)
	return nil
}
