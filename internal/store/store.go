package store

import (
	"database/sql"
	_ "embed"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 0 - Initial schema (pre-migration)
// 1 - Added UNIQUE index on batches.submission_id
const currentSchemaVersion = 1

// ErrNotFound is returned when a requested batch does not exist.
var ErrNotFound = errors.New("not found")

// Store provides durable storage for game batches.
// Uses SQLite with WAL mode for concurrent read access.
type Store struct {
	db  *sql.DB
	ids IDGenerator
}

// Option configures a Store.
type Option func(*Store)

// WithIDGenerator sets the generator for submission IDs. The default is
// UUIDv7Generator.
func WithIDGenerator(g IDGenerator) Option {
	return func(s *Store) {
		s.ids = g
	}
}

// Open creates or opens a SQLite database at the given path.
// Applies required pragmas and migrations automatically.
//
// The connection is configured with:
//   - WAL journaling so readers proceed while a batch is written
//   - NORMAL synchronous mode
//   - a 5-second busy timeout
//   - foreign key enforcement
//
// This function is idempotent - safe to call multiple times.
func Open(path string, opts ...Option) (*Store, error) {
	// Creates the file on first use
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// sql.Open is lazy; Ping makes the first connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time
	db.SetMaxOpenConns(1) // Single writer, no SQLITE_BUSY between pool connections
	db.SetMaxIdleConns(1) // Pragmas are per connection, keep the one we set up

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	// Tables first, then numbered migrations on top
	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	s := &Store{db: db, ids: UUIDv7Generator{}}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB returns the underlying sql.DB for direct queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// applyPragmas sets the connection-level SQLite configuration. Each pragma
// is safe to re-run on an existing database.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// applySchema creates tables if they don't exist and runs migrations.
// This function is idempotent.
func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	if err := runMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// runMigrations applies incremental schema migrations based on user_version.
func runMigrations(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}

	// Each step runs once, in order, from the stored version
	if version < 1 {
		if err := migrateToV1(db); err != nil {
			return err
		}
	}

	// Record the version only after every step succeeded
	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}

	return nil
}

// migrateToV1 makes submission IDs unique. A duplicate would mean two
// writes claimed the same submission.
func migrateToV1(db *sql.DB) error {
	// IF NOT EXISTS keeps a rerun after a failed version write harmless
	_, err := db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_batches_submission_unique
		ON batches(submission_id)
	`)
	if err != nil {
		return fmt.Errorf("migrate to v1: %w", err)
	}
	return nil
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (s *Store) verifyPragma(name, expected string) error {
	var value string
	query := fmt.Sprintf("PRAGMA %s", name)
	if err := s.db.QueryRow(query).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
