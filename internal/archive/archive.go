// Package archive provides blob storage backends for catalog dataset
// snapshots. Snapshots are opaque named blobs; the archive neither interprets
// nor versions them.
package archive

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned by Pull when no object exists under the name.
var ErrNotFound = errors.New("archive object not found")

// Archive stores named dataset blobs. Operations stream through
// io.Reader/io.Writer so large snapshots never sit in memory whole.
type Archive interface {
	// Push stores the blob read from r under name, replacing any previous
	// blob with that name.
	Push(ctx context.Context, name string, r io.Reader) error

	// Pull retrieves the named blob and writes it to w.
	Pull(ctx context.Context, name string, w io.Writer) error

	// Exists reports whether a blob is stored under name.
	Exists(ctx context.Context, name string) (bool, error)

	// ValidateSetup verifies that the archive is accessible and properly
	// configured.
	ValidateSetup(ctx context.Context) error
}
