// Package shard computes deterministic per-entity directory paths from
// numeric catalog identifiers. Spreading tens of millions of entries across a
// 4-level, base-10 tree bounds every directory at 100 entries, avoiding the
// filesystem performance cliff of a single directory with millions of them.
// The same scheme addresses both the primary data tree and its cache tree.
package shard

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// MaxID is the largest identifier representable in the 8-digit scheme.
// Identifiers beyond it are a caller error, not a transient condition.
const MaxID = 99_999_999

// CacheSuffix is appended to a primary data directory to name the sibling
// directory holding derived, non-authoritative artifacts.
const CacheSuffix = ".cache"

// ErrOutOfRange is returned for identifiers outside 0..MaxID.
var ErrOutOfRange = errors.New("id out of 8-digit shard range")

// Path returns the shard directory for id under root. The path has the form
// root/nn/nn/nn/nn where the four segments concatenated are the zero-padded
// 8-digit decimal form of id: Path("/data", 7182480) == "/data/07/18/24/80".
func Path(root string, id int64) (string, error) {
	if id < 0 || id > MaxID {
		return "", fmt.Errorf("%w: %d", ErrOutOfRange, id)
	}
	s := fmt.Sprintf("%08d", id)
	return filepath.Join(root, s[0:2], s[2:4], s[4:6], s[6:8]), nil
}

// CacheRoot returns the cache directory corresponding to a primary data
// directory: one trailing separator is stripped, then CacheSuffix appended.
// Derived artifacts stay physically segregated from primary content but
// remain unambiguous to locate.
func CacheRoot(primaryDir string) string {
	return strings.TrimSuffix(primaryDir, string(filepath.Separator)) + CacheSuffix
}
