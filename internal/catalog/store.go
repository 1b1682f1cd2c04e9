package catalog

import (
	"context"
	"errors"

	"repocat/internal/model"
)

// ErrNotFound is returned by Store.Get when no record exists for an ID.
var ErrNotFound = errors.New("record not found")

// Store provides the persistent record store boundary. Records are addressed
// by their platform-assigned integer ID; there is no surrogate key.
// Implementations must support the nested languages shape so callers can
// find repositories by programming language name.
type Store interface {
	// Get returns the record for id, or ErrNotFound.
	Get(ctx context.Context, id int64) (*model.Record, error)

	// Put stores the record under its ID, replacing any previous version.
	// Each Put replaces the whole document; there is no partial update.
	Put(ctx context.Context, r *model.Record) error

	// Delete removes a record. Removal is whole-record; deleting an absent
	// ID is not an error.
	Delete(ctx context.Context, id int64) error

	// FindByLanguage returns records whose languages field names the given
	// programming language.
	FindByLanguage(ctx context.Context, name string) ([]*model.Record, error)

	// FindByOwner returns records with the given owner.
	FindByOwner(ctx context.Context, owner string) ([]*model.Record, error)

	// IDs returns the IDs of all stored records in ascending order.
	IDs(ctx context.Context) ([]int64, error)

	// Count returns the number of stored records.
	Count(ctx context.Context) (int64, error)

	// Close releases the store's resources.
	Close() error
}

// ArtifactCache stores derived artifacts keyed by cache name within an
// entity's primary data directory. Best-effort semantics are the caller's
// policy; implementations report their errors.
type ArtifactCache interface {
	// Put serializes value as the named artifact for primaryDir.
	Put(primaryDir, name string, value any) error

	// Get decodes the named artifact into out. A missing artifact is
	// (false, nil); a corrupt one is (false, err).
	Get(primaryDir, name string, out any) (bool, error)
}
