// Package migrations embeds the schema migration files for the record store
// backends and applies them with golang-migrate.
package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	pgxv5 "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed sqlite/*.sql postgres/*.sql
var migrationFiles embed.FS

// SQLiteUp brings a SQLite record store to the latest schema version.
func SQLiteUp(db *sql.DB) error {
	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("creating sqlite migration driver: %w", err)
	}
	return up("sqlite", driver)
}

// PostgresUp brings a Postgres record store to the latest schema version.
// The connection is a database/sql handle (pgx stdlib adapter); the store
// itself runs on a pgx pool.
func PostgresUp(db *sql.DB) error {
	driver, err := pgxv5.WithInstance(db, &pgxv5.Config{})
	if err != nil {
		return fmt.Errorf("creating postgres migration driver: %w", err)
	}
	return up("postgres", driver)
}

// up runs all pending migrations from the embedded directory named dir.
func up(dir string, driver database.Driver) error {
	src, err := iofs.New(migrationFiles, dir)
	if err != nil {
		return fmt.Errorf("reading migration files: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, dir, driver)
	if err != nil {
		src.Close()
		return fmt.Errorf("creating migrate instance: %w", err)
	}
	// Note: m is not closed because that would close the caller's db
	// connection. The caller owns the connection lifecycle.

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}
