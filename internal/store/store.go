package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib" // driver: pgx

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// Driver selects the SQL backend.
type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

// Store owns the database handle and hands out repositories.
type Store struct {
	db     *sql.DB
	driver Driver
	seq    *sequenceCounter
}

// Open connects to dsn with the given driver, applies SQLite pragmas and
// creates the schema if needed.
func Open(ctx context.Context, driver Driver, dsn string) (*Store, error) {
	var drvName string
	switch driver {
	case DriverSQLite:
		drvName = "sqlite"
	case DriverPostgres:
		drvName = "pgx"
	default:
		return nil, fmt.Errorf("unsupported driver: %q", driver)
	}

	db, err := sql.Open(drvName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if driver == DriverSQLite {
		// One connection keeps pragmas in effect and avoids SQLITE_BUSY
		// between the event writer and readers.
		db.SetMaxOpenConns(1)
		if err := applyPragmas(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply pragmas: %w", err)
		}
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := ensureSchema(ctx, db, driver); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	seq, err := newSequenceCounter(ctx, db)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db, driver: driver, seq: seq}, nil
}

// DB returns the underlying *sql.DB for raw queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Driver reports the backend in use.
func (s *Store) Driver() Driver {
	return s.driver
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Items returns the item repository.
func (s *Store) Items() *ItemRepo {
	return &ItemRepo{s: s}
}

// Progress returns the progress repository.
func (s *Store) Progress() *ProgressRepo {
	return &ProgressRepo{s: s}
}

// Bookmarks returns the bookmark repository.
func (s *Store) Bookmarks() *BookmarkRepo {
	return &BookmarkRepo{s: s}
}

// Reset deletes all recorded progress, grade events and bookmarks. Items
// are kept unless withItems is set.
func (s *Store) Reset(ctx context.Context, withItems bool) error {
	tables := []string{"grade_events", "progress", "bookmarks"}
	if withItems {
		tables = append(tables, "items")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin reset: %w", err)
	}
	defer tx.Rollback()

	for _, t := range tables {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+t); err != nil {
			return fmt.Errorf("clear %s: %w", t, err)
		}
	}
	return tx.Commit()
}

// rebind rewrites ? placeholders to $n for Postgres.
func (s *Store) rebind(query string) string {
	if s.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// applyPragmas configures SQLite for single-user use.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

func ensureSchema(ctx context.Context, db *sql.DB, driver Driver) error {
	schema := schemaSQLite
	if driver == DriverPostgres {
		schema = schemaPostgres
	}
	_, err := db.ExecContext(ctx, schema)
	return err
}

const schemaSQLite = `
CREATE TABLE IF NOT EXISTS items (
  id TEXT PRIMARY KEY,
  prompt TEXT NOT NULL,
  answers_json TEXT NOT NULL,
  kind TEXT NOT NULL DEFAULT 'sentence',
  level INTEGER NOT NULL DEFAULT 0,
  lesson INTEGER NOT NULL DEFAULT 0,
  position INTEGER NOT NULL DEFAULT 0,
  hint TEXT NOT NULL DEFAULT '',
  created_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS items_level_lesson ON items(level, lesson, position);

CREATE TABLE IF NOT EXISTS progress (
  item_id TEXT PRIMARY KEY,
  level INTEGER NOT NULL DEFAULT 0,
  lesson INTEGER NOT NULL DEFAULT 0,
  status INTEGER NOT NULL,
  probability REAL NOT NULL DEFAULT 0,
  last_input TEXT NOT NULL DEFAULT '',
  attempts INTEGER NOT NULL DEFAULT 1,
  updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS grade_events (
  sequence INTEGER PRIMARY KEY,
  session_id TEXT NOT NULL,
  item_id TEXT NOT NULL,
  item_index INTEGER NOT NULL,
  verdict TEXT NOT NULL,
  status INTEGER NOT NULL,
  probability REAL NOT NULL,
  input TEXT NOT NULL,
  level INTEGER NOT NULL DEFAULT 0,
  lesson INTEGER NOT NULL DEFAULT 0,
  created_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS grade_events_session ON grade_events(session_id);

CREATE TABLE IF NOT EXISTS bookmarks (
  scope TEXT PRIMARY KEY,
  item_index INTEGER NOT NULL,
  session_id TEXT NOT NULL,
  saved_at INTEGER NOT NULL
);
`

const schemaPostgres = `
CREATE TABLE IF NOT EXISTS items (
  id TEXT PRIMARY KEY,
  prompt TEXT NOT NULL,
  answers_json TEXT NOT NULL,
  kind TEXT NOT NULL DEFAULT 'sentence',
  level INTEGER NOT NULL DEFAULT 0,
  lesson INTEGER NOT NULL DEFAULT 0,
  position INTEGER NOT NULL DEFAULT 0,
  hint TEXT NOT NULL DEFAULT '',
  created_at BIGINT NOT NULL
);

CREATE INDEX IF NOT EXISTS items_level_lesson ON items(level, lesson, position);

CREATE TABLE IF NOT EXISTS progress (
  item_id TEXT PRIMARY KEY,
  level INTEGER NOT NULL DEFAULT 0,
  lesson INTEGER NOT NULL DEFAULT 0,
  status INTEGER NOT NULL,
  probability DOUBLE PRECISION NOT NULL DEFAULT 0,
  last_input TEXT NOT NULL DEFAULT '',
  attempts INTEGER NOT NULL DEFAULT 1,
  updated_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS grade_events (
  sequence BIGINT PRIMARY KEY,
  session_id TEXT NOT NULL,
  item_id TEXT NOT NULL,
  item_index INTEGER NOT NULL,
  verdict TEXT NOT NULL,
  status INTEGER NOT NULL,
  probability DOUBLE PRECISION NOT NULL,
  input TEXT NOT NULL,
  level INTEGER NOT NULL DEFAULT 0,
  lesson INTEGER NOT NULL DEFAULT 0,
  created_at BIGINT NOT NULL
);

CREATE INDEX IF NOT EXISTS grade_events_session ON grade_events(session_id);

CREATE TABLE IF NOT EXISTS bookmarks (
  scope TEXT PRIMARY KEY,
  item_index INTEGER NOT NULL,
  session_id TEXT NOT NULL,
  saved_at BIGINT NOT NULL
);
`
