// Package sqlitedb is a thin read-only gateway over the SQLite databases
// inside an iOS backup (Manifest.db and Photos.sqlite).
package sqlitedb

import (
	"database/sql"
	"fmt"
	"os"

	_ "modernc.org/sqlite"
)

// QueryError reports a failed query together with the SQL that caused it
type QueryError struct {
	SQL string
	Err error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query failed: %v (query was: %s)", e.Err, e.SQL)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// DB wraps a read-only connection to a SQLite database
type DB struct {
	db   *sql.DB
	path string
}

// Open opens the database at path read-only and verifies the connection.
// The caller owns the handle and must Close it.
func Open(path string) (*DB, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("database file not found: %s: %w", path, err)
	}

	db, err := sql.Open("sqlite", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database %s: %w", path, err)
	}

	return &DB{db: db, path: path}, nil
}

// OpenWritable opens the database at path with write access. Only test
// fixtures need this; production code always goes through Open.
func OpenWritable(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database %s: %w", path, err)
	}
	return &DB{db: db, path: path}, nil
}

// Close closes the underlying connection
func (d *DB) Close() error {
	if d.db != nil {
		return d.db.Close()
	}
	return nil
}

// Path returns the filesystem path the database was opened from
func (d *DB) Path() string {
	return d.path
}

// Query runs a parameterised query and returns the rows. Failures are
// wrapped in a QueryError carrying the offending SQL.
func (d *DB) Query(query string, args ...any) (*sql.Rows, error) {
	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, &QueryError{SQL: query, Err: err}
	}
	return rows, nil
}

// QueryRow runs a parameterised query expected to return at most one row
func (d *DB) QueryRow(query string, args ...any) *sql.Row {
	return d.db.QueryRow(query, args...)
}

// Exec runs a statement. Like OpenWritable this exists for test fixtures
// that need to create schema and seed rows.
func (d *DB) Exec(query string, args ...any) error {
	if _, err := d.db.Exec(query, args...); err != nil {
		return &QueryError{SQL: query, Err: err}
	}
	return nil
}
