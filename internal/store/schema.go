// Package store implements the persistence layer: SQLite access, schema
// migrations, and the indexed queries the scheduler and API build on.
package store

import (
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite" // pure-Go SQLite driver
)

// OpenDB opens (or creates) a SQLite database for the given DATABASE_URL with
// recommended pragmas: WAL journal mode, synchronous=NORMAL, foreign_keys=ON,
// busy_timeout=5000.
func OpenDB(databaseURL string) (*sql.DB, error) {
	dsn := normalizeDSN(databaseURL)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db %s: %w", dsn, err)
	}

	// Single-writer: only one connection needed. This also makes an
	// in-memory database behave as a single shared database in tests.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec %q on %s: %w", p, dsn, err)
		}
	}

	return db, nil
}

// normalizeDSN accepts a plain file path, a file: URI, or a sqlite:// URL and
// returns a DSN the driver understands.
func normalizeDSN(databaseURL string) string {
	for _, prefix := range []string{"sqlite3://", "sqlite://"} {
		if rest, ok := strings.CutPrefix(databaseURL, prefix); ok {
			return strings.TrimPrefix(rest, "/")
		}
	}
	return databaseURL
}
