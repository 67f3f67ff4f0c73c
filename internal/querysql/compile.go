package querysql

import (
	"fmt"
	"strings"

	"github.com/roach88/fundb/internal/queryir"
)

// SQLCompiler compiles queryir statements to parameterized SQL for SQLite.
//
// CRITICAL: All values are parameterized (never interpolated). Identifiers
// are written as-is and must have passed queryir.Validate.
type SQLCompiler struct{}

// NewSQLCompiler creates a new SQLCompiler.
func NewSQLCompiler() *SQLCompiler {
	return &SQLCompiler{}
}

// Compile converts a statement to parameterized SQL.
// Returns (sql, params, error) tuple.
func (c *SQLCompiler) Compile(s queryir.Statement) (string, []any, error) {
	if s == nil {
		return "", nil, fmt.Errorf("cannot compile nil statement")
	}

	switch stmt := s.(type) {
	case queryir.Insert:
		return c.compileInsert(stmt)
	case *queryir.Insert:
		return c.compileInsert(*stmt)
	case queryir.Update:
		return c.compileUpdate(stmt)
	case *queryir.Update:
		return c.compileUpdate(*stmt)
	case queryir.Select:
		return c.compileSelect(stmt)
	case *queryir.Select:
		return c.compileSelect(*stmt)
	default:
		return "", nil, fmt.Errorf("unsupported statement type: %T", s)
	}
}

// compileInsert emits one ? per value.
func (c *SQLCompiler) compileInsert(ins queryir.Insert) (string, []any, error) {
	if len(ins.Values) == 0 {
		return "", nil, fmt.Errorf("insert into %s: no values", ins.Into)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(ins.Values)), ", ")
	sql := fmt.Sprintf("INSERT INTO %s VALUES (%s)", ins.Into, placeholders)

	params := make([]any, len(ins.Values))
	copy(params, ins.Values)

	return sql, params, nil
}

// compileUpdate emits SET assignments joined with ", " followed by the
// WHERE clause. SET parameters precede WHERE parameters.
func (c *SQLCompiler) compileUpdate(upd queryir.Update) (string, []any, error) {
	if len(upd.Set) == 0 {
		return "", nil, fmt.Errorf("update %s: no assignments", upd.Table)
	}

	setParts := make([]string, len(upd.Set))
	params := make([]any, 0, len(upd.Set))
	for i, a := range upd.Set {
		setParts[i] = fmt.Sprintf("%s = ?", a.Field)
		params = append(params, a.Value)
	}

	sql := fmt.Sprintf("UPDATE %s SET %s", upd.Table, strings.Join(setParts, ", "))

	if upd.Filter != nil {
		whereSQL, whereParams, err := c.compilePredicate(upd.Filter)
		if err != nil {
			return "", nil, fmt.Errorf("compile filter: %w", err)
		}
		sql += " WHERE " + whereSQL
		params = append(params, whereParams...)
	}

	return sql, params, nil
}

// compileSelect emits one of the four SELECT shapes.
func (c *SQLCompiler) compileSelect(sel queryir.Select) (string, []any, error) {
	columns := "*"
	if len(sel.Columns) > 0 {
		columns = strings.Join(sel.Columns, ", ")
	}

	sql := fmt.Sprintf("SELECT %s FROM %s", columns, sel.From)

	var params []any
	if sel.Filter != nil {
		whereSQL, whereParams, err := c.compilePredicate(sel.Filter)
		if err != nil {
			return "", nil, fmt.Errorf("compile filter: %w", err)
		}
		sql += " WHERE " + whereSQL
		params = whereParams
	}

	return sql, params, nil
}

// compilePredicate compiles a predicate to a WHERE clause fragment.
// CRITICAL: Values NEVER interpolated - always use ? placeholders.
func (c *SQLCompiler) compilePredicate(p queryir.Predicate) (string, []any, error) {
	if p == nil {
		return "1 = 1", nil, nil // Always true
	}

	switch pred := p.(type) {
	case queryir.Equals:
		return c.compileEquals(pred)
	case *queryir.Equals:
		return c.compileEquals(*pred)
	case queryir.And:
		return c.compileAnd(pred)
	case *queryir.And:
		return c.compileAnd(*pred)
	default:
		return "", nil, fmt.Errorf("unsupported predicate type: %T", p)
	}
}

// compileEquals compiles an Equals predicate to "field = ?".
func (c *SQLCompiler) compileEquals(eq queryir.Equals) (string, []any, error) {
	return fmt.Sprintf("%s = ?", eq.Field), []any{eq.Value}, nil
}

// compileAnd compiles an And predicate to conjunction with AND.
func (c *SQLCompiler) compileAnd(and queryir.And) (string, []any, error) {
	if len(and.Predicates) == 0 {
		return "1 = 1", nil, nil // Always true (vacuous truth)
	}

	var sqlParts []string
	var allParams []any

	for _, pred := range and.Predicates {
		sql, params, err := c.compilePredicate(pred)
		if err != nil {
			return "", nil, err
		}
		sqlParts = append(sqlParts, sql)
		allParams = append(allParams, params...)
	}

	return strings.Join(sqlParts, " AND "), allParams, nil
}
