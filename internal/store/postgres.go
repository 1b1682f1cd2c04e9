package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"repocat/internal/catalog"
	"repocat/internal/model"
	"repocat/internal/store/migrations"
)

// PostgresStore implements the record store on a Postgres server, the
// deployment choice for full-scale catalogs. The record document is stored as
// JSONB, so the language lookup runs as a containment query against the
// nested {"name": ...} shape directly, with a GIN index behind it.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to the database at url, applies any pending
// schema migrations, and returns the store.
func NewPostgresStore(ctx context.Context, url string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}

	// Migrations run over a short-lived database/sql handle; the store
	// itself uses the pool.
	mdb := stdlib.OpenDBFromPool(pool)
	if err := migrations.PostgresUp(mdb); err != nil {
		mdb.Close()
		pool.Close()
		return nil, fmt.Errorf("migrating record store: %w", err)
	}
	if err := mdb.Close(); err != nil {
		pool.Close()
		return nil, fmt.Errorf("closing migration connection: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Get(ctx context.Context, id int64) (*model.Record, error) {
	var doc []byte
	err := s.pool.QueryRow(ctx, "SELECT doc FROM repos WHERE id = $1", id).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("record #%d: %w", id, catalog.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("loading record #%d: %w", id, err)
	}
	return decodeRecord(doc)
}

func (s *PostgresStore) Put(ctx context.Context, r *model.Record) error {
	doc, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encoding record #%d: %w", r.ID, err)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO repos (id, owner, name, doc) VALUES ($1, $2, $3, $4)
		 ON CONFLICT (id) DO UPDATE SET owner = excluded.owner, name = excluded.name, doc = excluded.doc`,
		r.ID, textOrNil(r.Owner), textOrNil(r.Name), doc)
	if err != nil {
		return fmt.Errorf("storing record #%d: %w", r.ID, err)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, id int64) error {
	if _, err := s.pool.Exec(ctx, "DELETE FROM repos WHERE id = $1", id); err != nil {
		return fmt.Errorf("deleting record #%d: %w", id, err)
	}
	return nil
}

func (s *PostgresStore) FindByLanguage(ctx context.Context, name string) ([]*model.Record, error) {
	needle, err := json.Marshal([]model.Language{{Name: name}})
	if err != nil {
		return nil, fmt.Errorf("encoding language query: %w", err)
	}
	return s.queryRecords(ctx,
		"SELECT doc FROM repos WHERE doc -> 'languages' @> $1 ORDER BY id", needle)
}

func (s *PostgresStore) FindByOwner(ctx context.Context, owner string) ([]*model.Record, error) {
	return s.queryRecords(ctx, "SELECT doc FROM repos WHERE owner = $1 ORDER BY id", owner)
}

func (s *PostgresStore) IDs(ctx context.Context) ([]int64, error) {
	rows, err := s.pool.Query(ctx, "SELECT id FROM repos ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("listing record ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning record id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *PostgresStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM repos").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting records: %w", err)
	}
	return n, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) queryRecords(ctx context.Context, query string, args ...any) ([]*model.Record, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying records: %w", err)
	}
	defer rows.Close()

	var out []*model.Record
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scanning record document: %w", err)
		}
		r, err := decodeRecord(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// textOrNil converts a text field to a query argument: nil unless known.
func textOrNil(f model.Field[string]) any {
	if v, ok := f.Get(); ok {
		return v
	}
	return nil
}

// Compile-time check that PostgresStore implements the Store interface.
var _ catalog.Store = (*PostgresStore)(nil)
