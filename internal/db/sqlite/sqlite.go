// Package sqlite owns the shared SQLite handle for the data directory:
// pragmas, schema migration, and the vector codec used by the review index.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// schema holds both record tables and the review embedding index. Reads and
// sessions are append-only; review_embeddings is upsert-by-key.
const schema = `
CREATE TABLE IF NOT EXISTS reads (
	id          TEXT PRIMARY KEY,
	title       TEXT NOT NULL,
	author      TEXT NOT NULL,
	isbn        TEXT NOT NULL DEFAULT '',
	status      TEXT NOT NULL,
	rating      INTEGER NOT NULL,
	review      TEXT NOT NULL DEFAULT '',
	started_at  TEXT,
	finished_at TEXT,
	created_at  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_reads_created_at ON reads(created_at);
CREATE INDEX IF NOT EXISTS idx_reads_identity ON reads(LOWER(title), LOWER(author));

CREATE TABLE IF NOT EXISTS sessions (
	id              TEXT PRIMARY KEY,
	mood            TEXT NOT NULL,
	direction       TEXT NOT NULL,
	recommendations TEXT NOT NULL,
	created_at      TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_sessions_created_at ON sessions(created_at);

CREATE TABLE IF NOT EXISTS review_embeddings (
	read_id    TEXT PRIMARY KEY,
	vector     BLOB NOT NULL,
	dim        INTEGER NOT NULL,
	text       TEXT NOT NULL,
	metadata   TEXT NOT NULL,
	updated_at TEXT NOT NULL
);
`

// Open opens (creating if needed) the database at path, enables WAL and the
// usual safety pragmas, and applies the schema.
func Open(path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
		"PRAGMA synchronous=NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("execute %s: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return db, nil
}
