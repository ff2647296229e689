package store

import (
	"fmt"
	"sync"

	"github.com/paperdesk/paperdesk/internal/schema"
)

// MemStore is a map-backed Store for tests and ephemeral use. Papers are
// deep-copied on the way in and out so callers never share mutable state
// with the store.
type MemStore struct {
	mu     sync.Mutex
	papers map[string]*schema.Paper
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{papers: make(map[string]*schema.Paper)}
}

// LoadAll implements Store.
func (s *MemStore) LoadAll() ([]*schema.Paper, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*schema.Paper, 0, len(s.papers))
	for _, p := range s.papers {
		out = append(out, p.Clone())
	}
	sortPapers(out)
	return out, nil
}

// Upsert implements Store.
func (s *MemStore) Upsert(p *schema.Paper) error {
	if p == nil || p.ID.IsZero() {
		return fmt.Errorf("cannot store a paper without an id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.papers[p.ID.Value] = p.Clone()
	return nil
}

// Delete implements Store.
func (s *MemStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.papers, id)
	return nil
}

// Clear implements Store.
func (s *MemStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.papers = make(map[string]*schema.Paper)
	return nil
}

// Close implements Store.
func (s *MemStore) Close() error { return nil }
