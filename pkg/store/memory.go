package store

import (
	"context"
	"slices"
	"sync"

	"github.com/Promptonauts/embate/pkg/models"
)

// MemoryStore is the reference in-memory backend. It keeps insertion order
// and hands out copies so callers cannot mutate stored records.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*models.EmbateRecord
	order   []string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]*models.EmbateRecord)}
}

func (s *MemoryStore) Save(_ context.Context, rec *models.EmbateRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	assignID(rec)
	if _, ok := s.records[rec.ID]; !ok {
		s.order = append(s.order, rec.ID)
	}
	s.records[rec.ID] = rec.Clone()
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*models.EmbateRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.records[id].Clone(), nil
}

func (s *MemoryStore) List(_ context.Context) ([]*models.EmbateRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.EmbateRecord, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.records[id].Clone())
	}
	return out, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[id]; !ok {
		return nil
	}
	delete(s.records, id)
	s.order = slices.DeleteFunc(s.order, func(v string) bool { return v == id })
	return nil
}

func (s *MemoryStore) Close() error { return nil }
