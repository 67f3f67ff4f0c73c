package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"

	"github.com/roach88/fundb/internal/errs"
)

// Querier is satisfied by *sql.DB, *sql.Tx and *sql.Conn.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// TableExists reports whether a table named name exists in the database
// reachable through q. SQLite table names are case-insensitive, so the
// comparison is too.
func TableExists(ctx context.Context, q Querier, name string) (bool, error) {
	var count int
	err := q.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM sqlite_master
		WHERE type = 'table' AND name = ? COLLATE NOCASE
	`, name).Scan(&count)
	if err != nil {
		return false, Classify(name, "check table existence", err)
	}
	return count > 0, nil
}

// ListTables returns the names of all user tables, ordered by name.
func ListTables(ctx context.Context, q Querier) ([]string, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT name FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
		ORDER BY name COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, Classify("", "list tables", err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, Classify("", "scan table name", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, Classify("", "iterate tables", err)
	}
	return names, nil
}

// Classify wraps err as an ENGINE error for table. Errors that are already
// *errs.Error pass through unchanged. A sqlite3.Error in the chain has its
// result codes recorded in Details.
func Classify(table, op string, err error) error {
	if err == nil {
		return nil
	}

	var domainErr *errs.Error
	if errors.As(err, &domainErr) {
		return err
	}

	wrapped := errs.Engine(table, op, err)

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		wrapped.Details = []string{
			fmt.Sprintf("sqlite code=%d extended=%d", int(sqliteErr.Code), int(sqliteErr.ExtendedCode)),
		}
	}

	return wrapped
}

// SQLiteCode returns the primary SQLite result code in err's chain.
func SQLiteCode(err error) (sqlite3.ErrNo, bool) {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code, true
	}
	return 0, false
}
