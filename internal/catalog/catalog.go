// Package catalog is the orchestration layer tying the record store, the
// shard addressing scheme, and the artifact cache together into the
// operations the CLI needs.
package catalog

import (
	"context"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"repocat/internal/model"
	"repocat/internal/shard"
)

// LanguageStatsArtifact is the cache name under which a repository's
// flattened language-name list is stored.
const LanguageStatsArtifact = "language_stats"

// refreshConcurrency is the number of repositories enriched in parallel
// during a batch refresh. Shards for distinct IDs never collide, so the work
// needs no coordination beyond the limit.
const refreshConcurrency = 8

// Service coordinates record storage and derived-artifact caching.
type Service struct {
	store    Store
	cache    ArtifactCache
	logger   Logger
	clock    Clock
	reposDir string
}

// NewService creates a Service. reposDir is the root of the primary
// per-repository data tree; shard paths for records are computed under it.
func NewService(store Store, cache ArtifactCache, logger Logger, clock Clock, reposDir string) *Service {
	return &Service{
		store:    store,
		cache:    cache,
		logger:   logger,
		clock:    clock,
		reposDir: reposDir,
	}
}

// Save stores a record, stamping its data-refreshed time first.
func (s *Service) Save(ctx context.Context, r *model.Record) error {
	r.Times.Refreshed = model.Known(model.StampOf(s.clock.Now()))
	if err := s.store.Put(ctx, r); err != nil {
		return fmt.Errorf("storing record #%d: %w", r.ID, err)
	}
	return nil
}

// Lookup returns the record for id.
func (s *Service) Lookup(ctx context.Context, id int64) (*model.Record, error) {
	return s.store.Get(ctx, id)
}

// Remove deletes the record for id from the store. Removal is whole-record;
// cached artifacts are left behind to age out with their shard.
func (s *Service) Remove(ctx context.Context, id int64) error {
	return s.store.Delete(ctx, id)
}

// FindByLanguage returns records naming the given programming language.
func (s *Service) FindByLanguage(ctx context.Context, name string) ([]*model.Record, error) {
	return s.store.FindByLanguage(ctx, name)
}

// RepoDir returns the shard directory for a repository under the primary
// data tree.
func (s *Service) RepoDir(id int64) (string, error) {
	return shard.Path(s.reposDir, id)
}

// CacheDir returns the directory holding a repository's derived artifacts,
// the ".cache" sibling of its shard directory.
func (s *Service) CacheDir(id int64) (string, error) {
	dir, err := s.RepoDir(id)
	if err != nil {
		return "", err
	}
	return shard.CacheRoot(dir), nil
}

// PutArtifact stores a derived artifact for a repository. Cache writes are
// best-effort: storage failures are logged and swallowed, since everything in
// the cache can be recomputed. An out-of-range id is a caller error and is
// returned.
func (s *Service) PutArtifact(id int64, name string, value any) error {
	dir, err := s.RepoDir(id)
	if err != nil {
		return err
	}
	if err := s.cache.Put(dir, name, value); err != nil {
		s.logger.Error("cache write failed", "id", id, "artifact", name, "error", err)
	}
	return nil
}

// Artifact loads a derived artifact for a repository into out. A corrupt
// artifact is logged and reported as a miss: the caller recomputes from the
// source of truth either way. An out-of-range id is a caller error and is
// returned.
func (s *Service) Artifact(id int64, name string, out any) (bool, error) {
	dir, err := s.RepoDir(id)
	if err != nil {
		return false, err
	}
	found, err := s.cache.Get(dir, name, out)
	if err != nil {
		s.logger.Error("cache read failed", "id", id, "artifact", name, "error", err)
		return false, nil
	}
	return found, nil
}

// LanguageNames returns the flattened language names for a repository,
// serving from the cache when possible and otherwise recomputing from the
// stored record and repopulating the cache.
func (s *Service) LanguageNames(ctx context.Context, id int64) ([]string, error) {
	var names []string
	if found, err := s.Artifact(id, LanguageStatsArtifact, &names); err != nil {
		return nil, err
	} else if found {
		return names, nil
	}

	rec, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	names, state := rec.LanguageNames()
	if state == model.StateKnown {
		if err := s.PutArtifact(id, LanguageStatsArtifact, names); err != nil {
			return nil, err
		}
	}
	return names, nil
}

// RefreshLanguageStats recomputes and caches the language-name artifact for
// each of the given repositories, in parallel. Repositories are independent,
// so per-ID failures are logged and skipped rather than aborting the batch.
// It returns the number of artifacts written.
func (s *Service) RefreshLanguageStats(ctx context.Context, ids []int64) (int64, error) {
	var refreshed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(refreshConcurrency)

	for _, id := range ids {
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}

			rec, err := s.store.Get(gctx, id)
			if err != nil {
				s.logger.Error("refresh: loading record failed", "id", id, "error", err)
				return nil
			}

			names, state := rec.LanguageNames()
			if state != model.StateKnown {
				s.logger.Debug("refresh: languages not known", "id", id, "state", state.String())
				return nil
			}

			if err := s.PutArtifact(id, LanguageStatsArtifact, names); err != nil {
				s.logger.Error("refresh: bad id", "id", id, "error", err)
				return nil
			}
			refreshed.Add(1)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return refreshed.Load(), err
	}
	return refreshed.Load(), nil
}

// AllRecords loads every record in the store, in ID order. Intended for
// dataset export, not per-request use.
func (s *Service) AllRecords(ctx context.Context) ([]*model.Record, error) {
	ids, err := s.store.IDs(ctx)
	if err != nil {
		return nil, err
	}
	recs := make([]*model.Record, 0, len(ids))
	for _, id := range ids {
		rec, err := s.store.Get(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("loading record #%d: %w", id, err)
		}
		recs = append(recs, rec)
	}
	return recs, nil
}
