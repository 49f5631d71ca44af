package store

import (
	"context"
	"sync"

	"github.com/matzehuels/reflow/pkg/document"
	"github.com/matzehuels/reflow/pkg/errors"
)

// MemoryStore keeps documents in memory. Stored documents are copied on
// the way in and out so callers cannot mutate them in place.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]document.Document
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string]document.Document)}
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*document.Document, error) {
	if err := errors.ValidateDocumentID(id); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.docs[id]
	if !ok {
		return nil, notFound(id)
	}
	return clone(&d), nil
}

func (s *MemoryStore) Put(ctx context.Context, d *document.Document) error {
	if err := prepare(d); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[d.ID] = *clone(d)
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	if err := errors.ValidateDocumentID(id); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[id]; !ok {
		return notFound(id)
	}
	delete(s.docs, id)
	return nil
}

func (s *MemoryStore) List(ctx context.Context, limit int) ([]Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Summary, 0, len(s.docs))
	for _, d := range s.docs {
		out = append(out, Summarize(&d))
	}
	return newestFirst(out, limit), nil
}

func (s *MemoryStore) Close() error { return nil }

func clone(d *document.Document) *document.Document {
	c := *d
	c.Boxes = append([]document.BoxSpec(nil), d.Boxes...)
	return &c
}

var _ Store = (*MemoryStore)(nil)
