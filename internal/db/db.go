// Package db persists rmaboard state in SQLite. The tracker treats it as an
// external collaborator: Store loads and saves the whole document.
package db

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// Open opens or creates the SQLite database at the given path.
// It sets pragmas for WAL mode, foreign key enforcement, and busy timeout.
func Open(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// SQLite is single-writer; one connection keeps the board file consistent.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}

	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("setting pragma %q: %w", p, err)
		}
	}

	return db, nil
}

// OpenStore opens the database at dbPath, creates or migrates the schema,
// and returns a Store over it.
func OpenStore(dbPath string) (*Store, error) {
	conn, err := Open(dbPath)
	if err != nil {
		return nil, err
	}
	if err := Initialize(conn); err != nil {
		conn.Close()
		return nil, err
	}
	if err := Migrate(conn); err != nil {
		conn.Close()
		return nil, err
	}
	return NewStore(conn), nil
}
