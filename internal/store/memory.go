package store

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"

	"repocat/internal/catalog"
	"repocat/internal/model"
)

// MemoryStore is an in-memory implementation of the Store interface, used for
// tests and for throwaway catalogs. Records are kept as encoded documents so
// callers never share memory with the store, matching the behavior of the
// real backends. Safe for concurrent use.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[int64][]byte
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[int64][]byte)}
}

func (m *MemoryStore) Get(_ context.Context, id int64) (*model.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	doc, ok := m.docs[id]
	if !ok {
		return nil, fmt.Errorf("record #%d: %w", id, catalog.ErrNotFound)
	}
	return decodeRecord(doc)
}

func (m *MemoryStore) Put(_ context.Context, r *model.Record) error {
	doc, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encoding record #%d: %w", r.ID, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[r.ID] = doc
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.docs, id)
	return nil
}

func (m *MemoryStore) FindByLanguage(ctx context.Context, name string) ([]*model.Record, error) {
	return m.filter(func(r *model.Record) bool {
		names, state := r.LanguageNames()
		if state != model.StateKnown {
			return false
		}
		return slices.Contains(names, name)
	})
}

func (m *MemoryStore) FindByOwner(ctx context.Context, owner string) ([]*model.Record, error) {
	return m.filter(func(r *model.Record) bool {
		o, ok := r.Owner.Get()
		return ok && o == owner
	})
}

func (m *MemoryStore) IDs(_ context.Context) ([]int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]int64, 0, len(m.docs))
	for id := range m.docs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}

func (m *MemoryStore) Count(_ context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.docs)), nil
}

func (m *MemoryStore) Close() error { return nil }

// filter returns decoded records matching pred, in ID order.
func (m *MemoryStore) filter(pred func(*model.Record) bool) ([]*model.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]int64, 0, len(m.docs))
	for id := range m.docs {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	var out []*model.Record
	for _, id := range ids {
		r, err := decodeRecord(m.docs[id])
		if err != nil {
			return nil, err
		}
		if pred(r) {
			out = append(out, r)
		}
	}
	return out, nil
}

func decodeRecord(doc []byte) (*model.Record, error) {
	var r model.Record
	if err := json.Unmarshal(doc, &r); err != nil {
		return nil, fmt.Errorf("decoding record document: %w", err)
	}
	return &r, nil
}

// Compile-time check that MemoryStore implements the Store interface.
var _ catalog.Store = (*MemoryStore)(nil)
