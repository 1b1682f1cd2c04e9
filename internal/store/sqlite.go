package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"repocat/internal/catalog"
	"repocat/internal/model"
	"repocat/internal/store/migrations"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteStore implements the record store on a local SQLite database.
// Records are stored as their JSON document alongside a repo_languages side
// table, maintained on every Put, so lookups by programming language stay
// expressible against the nested {"name": ...} shape.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite record store and applies any
// pending schema migrations.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := openSQLite(path)
	if err != nil {
		return nil, err
	}

	if err := migrations.SQLiteUp(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating record store: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// openSQLite opens and configures a SQLite connection.
func openSQLite(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Foreign keys are off by default in SQLite; the languages side table
	// relies on ON DELETE CASCADE.
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	return db, nil
}

func (s *SQLiteStore) Get(ctx context.Context, id int64) (*model.Record, error) {
	var doc []byte
	err := s.db.QueryRowContext(ctx, "SELECT doc FROM repos WHERE id = ?", id).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("record #%d: %w", id, catalog.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("loading record #%d: %w", id, err)
	}
	return decodeRecord(doc)
}

func (s *SQLiteStore) Put(ctx context.Context, r *model.Record) error {
	doc, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encoding record #%d: %w", r.ID, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO repos (id, owner, name, doc) VALUES (?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET owner = excluded.owner, name = excluded.name, doc = excluded.doc`,
		r.ID, nullable(r.Owner), nullable(r.Name), string(doc))
	if err != nil {
		return fmt.Errorf("storing record #%d: %w", r.ID, err)
	}

	// Rebuild the language rows for this record.
	if _, err := tx.ExecContext(ctx, "DELETE FROM repo_languages WHERE repo_id = ?", r.ID); err != nil {
		return fmt.Errorf("clearing languages for #%d: %w", r.ID, err)
	}
	if names, state := r.LanguageNames(); state == model.StateKnown {
		for _, name := range names {
			_, err := tx.ExecContext(ctx,
				"INSERT OR IGNORE INTO repo_languages (repo_id, name) VALUES (?, ?)", r.ID, name)
			if err != nil {
				return fmt.Errorf("storing language %q for #%d: %w", name, r.ID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing record #%d: %w", r.ID, err)
	}
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM repos WHERE id = ?", id); err != nil {
		return fmt.Errorf("deleting record #%d: %w", id, err)
	}
	return nil
}

func (s *SQLiteStore) FindByLanguage(ctx context.Context, name string) ([]*model.Record, error) {
	return s.queryRecords(ctx,
		`SELECT r.doc FROM repos r
		 JOIN repo_languages l ON l.repo_id = r.id
		 WHERE l.name = ? ORDER BY r.id`, name)
}

func (s *SQLiteStore) FindByOwner(ctx context.Context, owner string) ([]*model.Record, error) {
	return s.queryRecords(ctx, "SELECT doc FROM repos WHERE owner = ? ORDER BY id", owner)
}

func (s *SQLiteStore) IDs(ctx context.Context) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id FROM repos ORDER BY id")
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

func (s *SQLiteStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM repos").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting records: %w", err)
	}
	return n, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// queryRecords runs a query whose single column is a record document.
func (s *SQLiteStore) queryRecords(ctx context.Context, query string, args ...any) ([]*model.Record, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
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

// nullable converts a text field to a SQL value: NULL unless known.
func nullable(f model.Field[string]) sql.NullString {
	v, ok := f.Get()
	return sql.NullString{String: v, Valid: ok}
}

// Compile-time check that SQLiteStore implements the Store interface.
var _ catalog.Store = (*SQLiteStore)(nil)
