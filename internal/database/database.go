// Package database owns the SQLite connection and the registry of tables,
// and orchestrates existence checks, auto-creation and commits around each
// table operation.
//
// # Session Model
//
// A Database holds at most one pending transaction (the session). Mutating
// operations run inside it and commit immediately after the statement
// succeeds; on any failure the session is rolled back, so nothing partial is
// ever committed. The session is passed explicitly to the table operations.
//
// # Existence Policy
//
// A registered table that is absent from the database is created if and
// only if it carries a schema definition. Otherwise the operation fails with
// TABLE_NOT_FOUND and is not retried.
//
// A Database is single-owner: it is not safe for concurrent use.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/roach88/fundb/internal/errs"
	"github.com/roach88/fundb/internal/store"
	"github.com/roach88/fundb/internal/table"
)

// Config controls how a Database is opened.
type Config struct {
	// Path is the SQLite file, or ":memory:".
	Path string

	// JournalMode overrides the journal_mode pragma (default WAL).
	JournalMode string

	// BusyTimeout overrides the busy_timeout pragma (default 5s).
	BusyTimeout time.Duration

	// Logger receives operation logs. Nil discards them.
	Logger *slog.Logger
}

// conn is what table operations and catalog queries run against: the
// pending *sql.Tx or the *sql.DB.
type conn interface {
	table.Executor
	store.Querier
}

// Database is an open SQLite database plus its registered tables.
type Database struct {
	id      string
	path    string
	store   *store.Store
	tables  []*table.Table
	pending *sql.Tx
	logger  *slog.Logger
}

// Open opens the database at path and registers tables, creating any that
// are absent but carry a schema.
func Open(ctx context.Context, path string, tables ...*table.Table) (*Database, error) {
	return OpenConfig(ctx, Config{Path: path}, tables...)
}

// OpenConfig is Open with full configuration. On failure nothing is left
// open.
func OpenConfig(ctx context.Context, cfg Config, tables ...*table.Table) (*Database, error) {
	s, err := store.Open(ctx, store.Config{
		Path:        cfg.Path,
		JournalMode: cfg.JournalMode,
		BusyTimeout: cfg.BusyTimeout,
	})
	if err != nil {
		return nil, store.Classify("", "open database", err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	id := uuid.Must(uuid.NewV7()).String()
	db := &Database{
		id:     id,
		path:   cfg.Path,
		store:  s,
		logger: logger.With("session", id, "path", cfg.Path),
	}
	db.logger.Debug("database opened")

	if err := db.Add(ctx, tables...); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// ID returns the session identifier attached to this Database's logs.
func (db *Database) ID() string { return db.id }

// Path returns the database path.
func (db *Database) Path() string { return db.path }

// Tables returns the registered tables in registration order.
func (db *Database) Tables() []*table.Table {
	out := make([]*table.Table, len(db.tables))
	copy(out, db.tables)
	return out
}

// Table returns the registered table with the given name.
func (db *Database) Table(name string) (*table.Table, bool) {
	for _, t := range db.tables {
		if strings.EqualFold(t.Name(), name) {
			return t, true
		}
	}
	return nil, false
}

// EngineTables lists every table present in the SQLite file, registered or
// not.
func (db *Database) EngineTables(ctx context.Context) ([]string, error) {
	if err := db.checkOpen(); err != nil {
		return nil, err
	}
	return store.ListTables(ctx, db.executor())
}

// Add registers tables after checking that each exists (creating those
// that are absent but carry a schema). Either every table is registered or
// none is.
func (db *Database) Add(ctx context.Context, tables ...*table.Table) error {
	if err := db.checkOpen(); err != nil {
		return err
	}
	if len(tables) == 0 {
		return nil
	}

	if err := checkNotNil(tables); err != nil {
		return err
	}

	seen := make(map[string]bool, len(db.tables)+len(tables))
	for _, t := range db.tables {
		seen[strings.ToLower(t.Name())] = true
	}
	for _, t := range tables {
		key := strings.ToLower(t.Name())
		if seen[key] {
			return errs.NewDuplicateTable(t.Name())
		}
		seen[key] = true
	}

	tx, err := db.session(ctx)
	if err != nil {
		return err
	}
	for _, t := range tables {
		if _, err := db.ensureExists(ctx, tx, t); err != nil {
			db.rollback()
			return err
		}
	}
	if err := db.Commit(ctx); err != nil {
		return err
	}

	db.tables = append(db.tables, tables...)
	for _, t := range tables {
		db.logger.Debug("table registered", "table", t.Name(), "columns", len(t.Columns()))
	}
	return nil
}

// Remove unregisters tables. The tables themselves are left untouched in
// the database.
func (db *Database) Remove(tables ...*table.Table) error {
	if err := checkNotNil(tables); err != nil {
		return err
	}
	for _, t := range tables {
		if !db.registered(t) {
			return errs.NewTableNotFound(t.Name(), "table not in database")
		}
	}
	for _, t := range tables {
		for i, r := range db.tables {
			if r == t {
				db.tables = append(db.tables[:i], db.tables[i+1:]...)
				break
			}
		}
		db.logger.Debug("table removed", "table", t.Name())
	}
	return nil
}

// CheckTable returns t if it is registered and exists. A registered table
// that is absent is created when it carries a schema.
func (db *Database) CheckTable(ctx context.Context, t *table.Table) (*table.Table, error) {
	if err := db.checkOpen(); err != nil {
		return nil, err
	}
	if t == nil {
		return nil, errs.NewTableNotFound("", "table is nil")
	}
	if !db.registered(t) {
		e := errs.NewTableNotFound(t.Name(), "table not in database")
		if t.HasSchema() {
			e.Hint = "table has a schema; perhaps use Create"
		}
		return nil, e
	}

	started := db.pending == nil
	tx, err := db.session(ctx)
	if err != nil {
		return nil, err
	}
	created, err := db.ensureExists(ctx, tx, t)
	switch {
	case err != nil:
		db.rollback()
		return nil, err
	case created:
		if err := db.Commit(ctx); err != nil {
			return nil, err
		}
	case started:
		// Nothing was written; release the session.
		db.rollback()
	}
	return t, nil
}

// Insert adds one row to t and commits.
func (db *Database) Insert(ctx context.Context, t *table.Table, values ...any) error {
	if _, err := db.CheckTable(ctx, t); err != nil {
		return err
	}

	tx, err := db.session(ctx)
	if err != nil {
		return err
	}
	if err := t.Insert(ctx, tx, values...); err != nil {
		db.rollback()
		return err
	}
	db.logger.Debug("insert", "table", t.Name(), "values", len(values))

	return db.Commit(ctx)
}

// Update applies entries to t and commits. Returns the number of rows
// affected.
func (db *Database) Update(ctx context.Context, t *table.Table, entries ...table.Entry) (int64, error) {
	if _, err := db.CheckTable(ctx, t); err != nil {
		return 0, err
	}

	tx, err := db.session(ctx)
	if err != nil {
		return 0, err
	}
	n, err := t.Update(ctx, tx, entries...)
	if err != nil {
		db.rollback()
		return 0, err
	}
	db.logger.Debug("update", "table", t.Name(), "entries", len(entries), "rows", n)

	if err := db.Commit(ctx); err != nil {
		return 0, err
	}
	return n, nil
}

// Select reads rows from t. Nothing is committed.
func (db *Database) Select(ctx context.Context, t *table.Table, columns []string, filters map[string]any) ([]table.Row, error) {
	if _, err := db.CheckTable(ctx, t); err != nil {
		return nil, err
	}

	rows, err := t.Select(ctx, db.executor(), columns, filters)
	if err != nil {
		return nil, err
	}
	db.logger.Debug("select", "table", t.Name(), "columns", len(columns), "filters", len(filters), "rows", len(rows))
	return rows, nil
}

// Create executes the schema of each table and commits. Tables need not be
// registered. Fails with SCHEMA_NOT_REGISTERED for a table without schema;
// in that case no table is created.
func (db *Database) Create(ctx context.Context, tables ...*table.Table) error {
	if err := db.checkOpen(); err != nil {
		return err
	}

	tx, err := db.session(ctx)
	if err != nil {
		return err
	}
	for _, t := range tables {
		if err := t.Create(ctx, tx); err != nil {
			db.rollback()
			return err
		}
		db.logger.Info("table created", "table", t.Name())
	}
	return db.Commit(ctx)
}

// Commit flushes the pending session. It is a no-op when nothing is
// pending.
func (db *Database) Commit(ctx context.Context) error {
	if db.pending == nil {
		return nil
	}
	tx := db.pending
	db.pending = nil
	if err := tx.Commit(); err != nil {
		return store.Classify("", "commit", err)
	}
	return nil
}

// Close rolls back any pending session and closes the connection. Safe to
// call more than once.
func (db *Database) Close() error {
	db.rollback()
	if db.store == nil {
		return nil
	}
	err := db.store.Close()
	db.store = nil
	db.logger.Debug("database closed")
	if err != nil {
		return store.Classify("", "close", err)
	}
	return nil
}

// ensureExists creates t when it is absent and carries a schema.
func (db *Database) ensureExists(ctx context.Context, ex conn, t *table.Table) (bool, error) {
	exists, err := store.TableExists(ctx, ex, t.Name())
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}
	if !t.HasSchema() {
		return false, errs.NewTableNotFound(t.Name(), "table does not exist in database")
	}
	if err := t.Create(ctx, ex); err != nil {
		return false, err
	}
	// The statement ran; make sure it created this table and not another.
	exists, err = store.TableExists(ctx, ex, t.Name())
	if err != nil {
		return false, err
	}
	if !exists {
		return false, errs.NewTableNotFound(t.Name(), "schema did not create the table")
	}
	db.logger.Info("table created", "table", t.Name(), "reason", "absent")
	return true, nil
}

func (db *Database) registered(t *table.Table) bool {
	for _, r := range db.tables {
		if r == t {
			return true
		}
	}
	return false
}

// session returns the pending transaction, starting one if needed.
func (db *Database) session(ctx context.Context) (*sql.Tx, error) {
	if err := db.checkOpen(); err != nil {
		return nil, err
	}
	if db.pending == nil {
		tx, err := db.store.Begin(ctx)
		if err != nil {
			return nil, err
		}
		db.pending = tx
	}
	return db.pending, nil
}

// executor returns the pending session if there is one, else the
// connection itself.
func (db *Database) executor() conn {
	if db.pending != nil {
		return db.pending
	}
	return db.store.DB()
}

func (db *Database) rollback() {
	if db.pending == nil {
		return
	}
	if err := db.pending.Rollback(); err != nil {
		db.logger.Warn("rollback failed", "error", err)
	}
	db.pending = nil
}

func (db *Database) checkOpen() error {
	if db.store == nil {
		return errs.Engine("", "database is closed", nil)
	}
	return nil
}

func checkNotNil(tables []*table.Table) error {
	for i, t := range tables {
		if t == nil {
			return errs.NewTableNotFound("", fmt.Sprintf("table %d is nil", i))
		}
	}
	return nil
}
