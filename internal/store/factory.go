// Package store provides the persistent record store backends: SQLite for
// single-host catalogs, Postgres for full-scale deployments, and an in-memory
// store for tests.
package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"repocat/internal/catalog"
	"repocat/internal/config"
)

// NewStoreFromConfig creates a Store implementation based on the database
// config type. hostedService names the per-platform database file for the
// sqlite backend.
func NewStoreFromConfig(ctx context.Context, cfg config.DatabaseConfig, hostedService string) (catalog.Store, error) {
	switch cfg.Type {
	case "sqlite":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("data_dir required for sqlite database")
		}
		if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
		return NewSQLiteStore(filepath.Join(cfg.DataDir, hostedService+".db"))
	case "postgres":
		if cfg.URL == "" {
			return nil, fmt.Errorf("url required for postgres database")
		}
		return NewPostgresStore(ctx, cfg.URL)
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown database type: %s", cfg.Type)
	}
}
