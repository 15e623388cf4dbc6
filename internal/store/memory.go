package store

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/rentfleet/fleet-sync/internal/document"
)

// Memory is a Store held in process memory. It backs tests and dry runs.
type Memory struct {
	mu   sync.RWMutex
	docs map[string]document.Document
}

var _ Store = (*Memory)(nil)

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{docs: make(map[string]document.Document)}
}

// Upsert implements Store.
func (m *Memory) Upsert(ctx context.Context, docs []document.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range docs {
		m.docs[d.ID] = d
	}
	return nil
}

// Get implements Store.
func (m *Memory) Get(_ context.Context, id string) (document.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	d, ok := m.docs[id]
	if !ok {
		return document.Document{}, ErrNotFound
	}
	return d, nil
}

// Len returns the number of stored documents.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.docs)
}

// All returns every stored document ordered by ID.
func (m *Memory) All() []document.Document {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]document.Document, 0, len(m.docs))
	for _, d := range m.docs {
		out = append(out, d)
	}
	slices.SortFunc(out, func(a, b document.Document) int {
		return strings.Compare(a.ID, b.ID)
	})
	return out
}

// Close implements Store.
func (*Memory) Close() error { return nil }
