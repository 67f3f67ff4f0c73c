// Package table describes a single database table and builds the statements
// that read and write it.
//
// A Table is immutable after New. Its operations never hold a connection of
// their own: every call receives the Executor (transaction or connection) to
// run against, so ownership of the session stays with the caller.
package table

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/roach88/fundb/internal/errs"
	"github.com/roach88/fundb/internal/queryir"
	"github.com/roach88/fundb/internal/querysql"
	"github.com/roach88/fundb/internal/schema"
	"github.com/roach88/fundb/internal/store"
)

// Executor runs statements. *sql.DB, *sql.Tx and *sql.Conn satisfy it.
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Row is one result row, in result column order.
type Row []any

// Table is the in-memory description of a table.
type Table struct {
	name    string
	columns []string
	schema  *schema.Definition
}

// New creates a table description. def may be nil when the table is expected
// to exist already; otherwise it must create this table (names compare
// case-insensitively, as in SQLite) or New fails with INVALID_SCHEMA.
// columns lists the declared column names in order; it is used to validate
// insert arity and referenced column names.
func New(name string, def *schema.Definition, columns ...string) (*Table, error) {
	if def != nil && !strings.EqualFold(def.Table(), name) {
		return nil, errs.NewInvalidSchema(name, []string{
			fmt.Sprintf("schema creates table %q, not %q", def.Table(), name),
		})
	}
	cols := make([]string, len(columns))
	copy(cols, columns)
	return &Table{name: name, columns: cols, schema: def}, nil
}

// MustNew is like New but panics on error. Intended for package-level
// table declarations.
func MustNew(name string, def *schema.Definition, columns ...string) *Table {
	t, err := New(name, def, columns...)
	if err != nil {
		panic(err)
	}
	return t
}

// Name returns the table name.
func (t *Table) Name() string { return t.name }

// String returns the table name.
func (t *Table) String() string { return t.name }

// Columns returns a copy of the declared column names.
func (t *Table) Columns() []string {
	return slices.Clone(t.columns)
}

// Schema returns the schema definition, or nil.
func (t *Table) Schema() *schema.Definition { return t.schema }

// HasSchema reports whether the table carries a schema definition.
func (t *Table) HasSchema() bool { return t.schema != nil }

// HasColumn reports whether name is a declared column.
func (t *Table) HasColumn(name string) bool {
	return slices.Contains(t.columns, name)
}

// Insert adds one row. The number of values must equal the number of
// declared columns, so a table declaring no columns accepts no insert.
func (t *Table) Insert(ctx context.Context, ex Executor, values ...any) error {
	if len(values) == 0 || len(values) != len(t.columns) {
		return errs.NewColumnCount(t.name, len(values), len(t.columns))
	}

	_, err := t.exec(ctx, ex, "insert", queryir.Insert{Into: t.name, Values: values})
	return err
}

// Update changes rows. Every entry's column must be declared and at least
// one entry must be a change (three-element) entry. Every entry contributes
// "column = match" to the WHERE clause; change entries also contribute
// "column = new" to the SET clause.
//
// Returns the number of rows affected.
func (t *Table) Update(ctx context.Context, ex Executor, entries ...Entry) (int64, error) {
	for _, e := range entries {
		if !t.HasColumn(e.Column) {
			return 0, errs.NewColumnNotFound(t.name, e.Column)
		}
	}

	var set []queryir.Assign
	fields := make([]string, 0, len(entries))
	matches := make([]any, 0, len(entries))
	for _, e := range entries {
		if e.Change {
			set = append(set, queryir.Assign{Field: e.Column, Value: e.New})
		}
		fields = append(fields, e.Column)
		matches = append(matches, e.Match)
	}

	if len(set) == 0 {
		return 0, errs.NewInvalidUpdate(t.name, "update should have at least one column to change")
	}

	res, err := t.exec(ctx, ex, "update", queryir.Update{
		Table:  t.name,
		Set:    set,
		Filter: queryir.EqualsAll(fields, matches),
	})
	if err != nil {
		return 0, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, store.Classify(t.name, "rows affected", err)
	}
	return n, nil
}

// Select returns every row matching all filters (AND). With no columns the
// statement selects *. Filter keys are sorted so the generated statement is
// deterministic. When the table declares columns, requested columns and
// filter keys must be among them.
func (t *Table) Select(ctx context.Context, ex Executor, columns []string, filters map[string]any) ([]Row, error) {
	if len(t.columns) > 0 {
		for _, c := range columns {
			if !t.HasColumn(c) {
				return nil, errs.NewColumnNotFound(t.name, c)
			}
		}
		for k := range filters {
			if !t.HasColumn(k) {
				return nil, errs.NewColumnNotFound(t.name, k)
			}
		}
	}

	keys := make([]string, 0, len(filters))
	for k := range filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	values := make([]any, len(keys))
	for i, k := range keys {
		values[i] = filters[k]
	}

	stmt := queryir.Select{
		From:    t.name,
		Columns: slices.Clone(columns),
		Filter:  queryir.EqualsAll(keys, values),
	}

	sqlText, params, err := t.compile(stmt)
	if err != nil {
		return nil, err
	}

	rows, err := ex.QueryContext(ctx, sqlText, params...)
	if err != nil {
		return nil, store.Classify(t.name, "select", err)
	}

	scanned, err := store.ScanRows(rows)
	if err != nil {
		return nil, store.Classify(t.name, "select", err)
	}

	result := make([]Row, len(scanned))
	for i, r := range scanned {
		result[i] = Row(r)
	}
	return result, nil
}

// Create executes the schema statement verbatim.
func (t *Table) Create(ctx context.Context, ex Executor) error {
	if t.schema == nil {
		return errs.NewSchemaNotRegistered(t.name)
	}
	if _, err := ex.ExecContext(ctx, t.schema.Statement()); err != nil {
		return store.Classify(t.name, "create", err)
	}
	return nil
}

// compile validates and compiles stmt.
func (t *Table) compile(stmt queryir.Statement) (string, []any, error) {
	if result := queryir.Validate(stmt); !result.Valid {
		return "", nil, errs.NewInvalidIdentifier(t.name, result.Problems)
	}
	return querysql.NewSQLCompiler().Compile(stmt)
}

func (t *Table) exec(ctx context.Context, ex Executor, op string, stmt queryir.Statement) (sql.Result, error) {
	sqlText, params, err := t.compile(stmt)
	if err != nil {
		return nil, err
	}
	res, err := ex.ExecContext(ctx, sqlText, params...)
	if err != nil {
		return nil, store.Classify(t.name, op, err)
	}
	return res, nil
}
