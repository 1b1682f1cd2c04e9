package archive

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
)

// MemoryArchive is an in-memory implementation of the Archive interface,
// useful for testing. Safe for concurrent use.
type MemoryArchive struct {
	name string
	mu   sync.RWMutex
	objs map[string][]byte
}

// NewMemoryArchive creates an empty in-memory archive with the given name.
func NewMemoryArchive(name string) *MemoryArchive {
	return &MemoryArchive{name: name, objs: make(map[string][]byte)}
}

func (m *MemoryArchive) Push(_ context.Context, name string, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("reading blob: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.objs[name] = data
	return nil
}

func (m *MemoryArchive) Pull(_ context.Context, name string, w io.Writer) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.objs[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("writing blob: %w", err)
	}
	return nil
}

func (m *MemoryArchive) Exists(_ context.Context, name string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.objs[name]
	return ok, nil
}

// ValidateSetup always succeeds for the in-memory archive.
func (m *MemoryArchive) ValidateSetup(_ context.Context) error {
	return nil
}

// Compile-time check that MemoryArchive implements the Archive interface.
var _ Archive = (*MemoryArchive)(nil)
