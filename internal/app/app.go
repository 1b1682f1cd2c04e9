package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"repocat/internal/archive"
	"repocat/internal/cache"
	"repocat/internal/catalog"
	"repocat/internal/config"
	"repocat/internal/credentials"
	"repocat/internal/dataset"
	"repocat/internal/model"
	"repocat/internal/store"
)

// App is the application layer between the CLI and the catalog service.
// It constructs all dependencies from config, exposes high-level operations,
// and manages the store lifecycle on Close.
type App struct {
	cfg     *config.Config
	store   catalog.Store
	archive archive.Archive
	service *catalog.Service
	op      *Operation
	logger  *slog.Logger
	logFile *os.File
}

// NewApp creates a fully wired App from the given config. operation and
// parameters identify the CLI command being run, for the log.
// The caller must call Close when done.
func NewApp(ctx context.Context, cfg *config.Config, operation, parameters string) (*App, error) {
	op := NewOperation(operation, parameters)

	logger, logFile, err := newLogger(cfg.LogDir, op.ID)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	dbCfg, err := resolveDatabase(cfg)
	if err != nil {
		logFile.Close()
		return nil, err
	}

	st, err := store.NewStoreFromConfig(ctx, dbCfg, cfg.HostedService)
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("creating store: %w", err)
	}

	arch, err := archive.NewArchiveFromConfig(ctx, cfg.Archive)
	if err != nil {
		st.Close()
		logFile.Close()
		return nil, fmt.Errorf("creating archive: %w", err)
	}

	svc := catalog.NewService(st, cache.NewDiskCache(), &slogAdapter{l: logger}, catalog.RealClock{}, cfg.ReposDir)

	logger.Info("operation started", "name", op.Name, "parameters", op.Parameters)

	return &App{
		cfg:     cfg,
		store:   st,
		archive: arch,
		service: svc,
		op:      op,
		logger:  logger,
		logFile: logFile,
	}, nil
}

// resolveDatabase fills in the Postgres URL from the encrypted credentials
// file when the config leaves it blank. Other store types pass through.
func resolveDatabase(cfg *config.Config) (config.DatabaseConfig, error) {
	dbCfg := cfg.Database
	if dbCfg.Type != "postgres" || dbCfg.URL != "" {
		return dbCfg, nil
	}

	credStore := credentials.NewStore(cfg.Credentials.Path)
	if !credStore.Exists() {
		return dbCfg, fmt.Errorf("postgres store configured without a URL and no credentials file at %s", cfg.Credentials.Path)
	}

	passphrase, err := credentials.PromptPassphrase(false)
	if err != nil {
		return dbCfg, err
	}
	creds, err := credStore.Load(passphrase)
	if err != nil {
		return dbCfg, fmt.Errorf("loading credentials: %w", err)
	}

	dbCfg.URL = creds.URL(cfg.HostedService)
	return dbCfg, nil
}

// SaveRecord stores the record, stamping its refresh time.
func (a *App) SaveRecord(ctx context.Context, r *model.Record) error {
	return a.service.Save(ctx, r)
}

// ShowRecord looks up a record by its identifier.
func (a *App) ShowRecord(ctx context.Context, id int64) (*model.Record, error) {
	return a.service.Lookup(ctx, id)
}

// RemoveRecord deletes a record from the store.
func (a *App) RemoveRecord(ctx context.Context, id int64) error {
	return a.service.Remove(ctx, id)
}

// RepoDir returns the primary shard directory for the repository.
func (a *App) RepoDir(id int64) (string, error) {
	return a.service.RepoDir(id)
}

// CacheDir returns the cache shard directory for the repository.
func (a *App) CacheDir(id int64) (string, error) {
	return a.service.CacheDir(id)
}

// Languages returns the repository's language names, cached where possible.
func (a *App) Languages(ctx context.Context, id int64) ([]string, error) {
	return a.service.LanguageNames(ctx, id)
}

// FindByLanguage returns records that list the given language.
func (a *App) FindByLanguage(ctx context.Context, name string) ([]*model.Record, error) {
	return a.service.FindByLanguage(ctx, name)
}

// FindByOwner returns records belonging to the given account.
func (a *App) FindByOwner(ctx context.Context, owner string) ([]*model.Record, error) {
	return a.store.FindByOwner(ctx, owner)
}

// RefreshLanguageStats recomputes the cached language artifact for the given
// records. Returns the number of records refreshed.
func (a *App) RefreshLanguageStats(ctx context.Context, ids []int64) (int64, error) {
	return a.service.RefreshLanguageStats(ctx, ids)
}

// RefreshAllLanguageStats recomputes the cached language artifact for every
// record in the store. Returns the number of records refreshed.
func (a *App) RefreshAllLanguageStats(ctx context.Context) (int64, error) {
	ids, err := a.store.IDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("listing record ids: %w", err)
	}
	return a.service.RefreshLanguageStats(ctx, ids)
}

// ExportDataset writes every record to path as a compressed snapshot.
// The file appears atomically. Returns the number of records written.
func (a *App) ExportDataset(ctx context.Context, path string) (int, error) {
	recs, err := a.service.AllRecords(ctx)
	if err != nil {
		return 0, err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return 0, fmt.Errorf("creating dataset directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".dataset-*")
	if err != nil {
		return 0, fmt.Errorf("creating temp dataset file: %w", err)
	}
	tmpName := tmp.Name()
	success := false
	defer func() {
		if !success {
			tmp.Close()
			os.Remove(tmpName)
		}
	}()

	if err := dataset.Save(tmp, recs); err != nil {
		return 0, fmt.Errorf("writing dataset: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return 0, fmt.Errorf("closing dataset file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return 0, fmt.Errorf("finalizing dataset file: %w", err)
	}
	success = true

	a.logger.Info("dataset exported", "path", path, "records", len(recs))
	return len(recs), nil
}

// ImportDataset reads the snapshot file at path and saves every record it
// contains into the store, replacing records that share an ID. Returns the
// number of records imported.
func (a *App) ImportDataset(ctx context.Context, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("opening dataset file: %w", err)
	}
	defer f.Close()

	recs, err := dataset.Load(f)
	if err != nil {
		return 0, fmt.Errorf("reading dataset: %w", err)
	}

	for i, rec := range recs {
		if err := a.service.Save(ctx, rec); err != nil {
			return i, fmt.Errorf("importing record #%d: %w", rec.ID, err)
		}
	}

	a.logger.Info("dataset imported", "path", path, "records", len(recs))
	return len(recs), nil
}

// PushDataset uploads the snapshot file at path to the archive under name.
func (a *App) PushDataset(ctx context.Context, path, name string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening dataset file: %w", err)
	}
	defer f.Close()

	if err := a.archive.Push(ctx, name, f); err != nil {
		return fmt.Errorf("pushing dataset: %w", err)
	}
	a.logger.Info("dataset pushed", "name", name)
	return nil
}

// PullDataset downloads the named snapshot from the archive to path.
func (a *App) PullDataset(ctx context.Context, name, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating dataset directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".dataset-*")
	if err != nil {
		return fmt.Errorf("creating temp dataset file: %w", err)
	}
	tmpName := tmp.Name()
	success := false
	defer func() {
		if !success {
			tmp.Close()
			os.Remove(tmpName)
		}
	}()

	if err := a.archive.Pull(ctx, name, tmp); err != nil {
		return fmt.Errorf("pulling dataset: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing dataset file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("finalizing dataset file: %w", err)
	}
	success = true

	a.logger.Info("dataset pulled", "name", name, "path", path)
	return nil
}

// Fail marks the operation as failed for the closing log line.
func (a *App) Fail() {
	a.op.Fail()
}

// Close logs the operation outcome and releases all resources.
func (a *App) Close() error {
	a.logger.Info("operation finished", "name", a.op.Name, "status", a.op.Status, "elapsed", a.op.Elapsed().Round(time.Millisecond))

	var firstErr error
	if err := a.store.Close(); err != nil {
		firstErr = fmt.Errorf("closing store: %w", err)
	}
	if a.logFile != nil {
		a.logFile.Close()
	}
	return firstErr
}
