// Package cache persists derived artifacts next to an entity's primary data
// directory. Artifacts live in a "<dir>.cache" sibling of the primary
// directory so the primary tree never accumulates derived files, one
// gob-encoded file per cache name.
//
// The cache is a pure optimization layer: callers own the source of truth and
// must be able to recompute anything stored here. Put and Get surface their
// errors so the caller decides whether a failure is worth logging; a missing
// or corrupt artifact is a miss, never fatal.
package cache

import (
	"encoding/gob"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"repocat/internal/shard"
)

// ErrCorrupt wraps deserialization failures on read: the artifact file exists
// but its contents cannot be decoded. Callers treat it as a miss.
var ErrCorrupt = errors.New("cache artifact is corrupt")

// Ext is the artifact file extension.
const Ext = ".gob"

// DiskCache reads and writes derived artifacts for primary data directories.
type DiskCache struct{}

// NewDiskCache creates a DiskCache.
func NewDiskCache() *DiskCache {
	return &DiskCache{}
}

// File returns the path of the artifact named name for primaryDir.
func (c *DiskCache) File(primaryDir, name string) string {
	return filepath.Join(shard.CacheRoot(primaryDir), name+Ext)
}

// Put serializes value and writes it as the named artifact for primaryDir.
// The cache directory is created if needed ("already exists" is not an
// error), and the file is written via temp-file-and-rename so a concurrent
// reader sees either the previous artifact or the new one, never a torn
// write. Concurrent writers to the same name race; last rename wins.
func (c *DiskCache) Put(primaryDir, name string, value any) error {
	dir := shard.CacheRoot(primaryDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if err := gob.NewEncoder(tmp).Encode(value); err != nil {
		tmp.Close()
		return fmt.Errorf("encoding artifact %q: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmpPath, c.File(primaryDir, name)); err != nil {
		return fmt.Errorf("renaming artifact into place: %w", err)
	}

	success = true
	return nil
}

// Get decodes the named artifact for primaryDir into out, which must be a
// pointer to a value of the type that was stored. It returns false with a
// nil error when no artifact exists, and false with an ErrCorrupt-wrapped
// error when one exists but cannot be decoded.
func (c *DiskCache) Get(primaryDir, name string, out any) (bool, error) {
	f, err := os.Open(c.File(primaryDir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("opening artifact %q: %w", name, err)
	}
	defer f.Close()

	if err := gob.NewDecoder(f).Decode(out); err != nil {
		return false, fmt.Errorf("%w: %s: %v", ErrCorrupt, name, err)
	}
	return true, nil
}
