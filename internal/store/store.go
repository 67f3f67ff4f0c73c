package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Defaults applied by Open when the corresponding Config field is zero.
const (
	DefaultJournalMode = "WAL"
	DefaultBusyTimeout = 5 * time.Second
)

var validJournalModes = map[string]bool{
	"DELETE":   true,
	"TRUNCATE": true,
	"PERSIST":  true,
	"MEMORY":   true,
	"WAL":      true,
	"OFF":      true,
}

// Config controls how the SQLite database is opened.
type Config struct {
	// Path is the database file, or ":memory:".
	Path string

	// JournalMode is the journal_mode pragma value (WAL, DELETE, MEMORY, ...).
	JournalMode string

	// BusyTimeout bounds how long SQLite waits on a locked database.
	BusyTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.JournalMode == "" {
		c.JournalMode = DefaultJournalMode
	}
	if c.BusyTimeout == 0 {
		c.BusyTimeout = DefaultBusyTimeout
	}
	return c
}

// Store is an open SQLite database.
type Store struct {
	db   *sql.DB
	path string
}

// Open creates or opens a SQLite database described by cfg.
// Applies required pragmas automatically.
//
// The database is configured with:
//   - the configured journal mode (WAL by default)
//   - NORMAL synchronous mode (balance durability/performance)
//   - the configured busy timeout (5 seconds by default)
//   - Foreign key enforcement
func Open(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("open database: path is required")
	}
	cfg = cfg.withDefaults()
	if !validJournalModes[strings.ToUpper(cfg.JournalMode)] {
		return nil, fmt.Errorf("open database: unsupported journal mode %q", cfg.JournalMode)
	}

	// Open database (creates file if doesn't exist)
	db, err := sql.Open("sqlite3", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Verify connection works
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// One connection: the pending transaction and every other statement
	// must run on the same SQLite handle.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := applyPragmas(ctx, db, cfg); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	return &Store{db: db, path: cfg.Path}, nil
}

// Close closes the database connection.
// Safe to call more than once.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// Path returns the path the store was opened with.
func (s *Store) Path() string {
	return s.path
}

// DB returns the underlying sql.DB for direct queries.
// Use with caution - prefer using Store methods when available.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Begin starts a transaction on the store's single connection.
func (s *Store) Begin(ctx context.Context) (*sql.Tx, error) {
	if s.db == nil {
		return nil, fmt.Errorf("begin: store is closed")
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, Classify("", "begin transaction", err)
	}
	return tx, nil
}

// Query executes a query and returns the resulting rows.
// Callers are responsible for closing the returned rows.
func (s *Store) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	if s.db == nil {
		return nil, fmt.Errorf("query: store is closed")
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, Classify("", "query", err)
	}
	return rows, nil
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(ctx context.Context, db *sql.DB, cfg Config) error {
	pragmas := []string{
		fmt.Sprintf("PRAGMA journal_mode = %s", cfg.JournalMode),
		"PRAGMA synchronous = NORMAL",
		fmt.Sprintf("PRAGMA busy_timeout = %d", cfg.BusyTimeout.Milliseconds()),
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
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
