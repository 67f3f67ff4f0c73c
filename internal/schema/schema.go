// Package schema validates CREATE TABLE statements attached to tables.
//
// A Definition is only ever constructed from a statement that passes every
// structural rule; the statement is then kept verbatim and executed as-is
// when the owning table has to be created.
package schema

import (
	"fmt"
	"strings"

	"github.com/roach88/fundb/internal/errs"
)

// Rule identifiers (S100-S199)
const (
	RulePrefix     = "S101" // must start with CREATE TABLE [IF NOT EXISTS] <name> (
	RuleTerminator = "S102" // must end with ;
	RulePrimaryKey = "S103" // must declare PRIMARY KEY
	RuleDataType   = "S104" // must use at least one recognized type token
)

// DataTypes lists the type tokens a statement must mention at least once.
// Matching is a case-sensitive substring test, so INTEGER satisfies INT.
var DataTypes = []string{
	"INT", "CHAR", "TEXT", "BLOB", "REAL", "FLOAT",
	"NUMERIC", "DECIMAL", "BOOLEAN", "DATE",
}

// Violation describes one broken rule.
type Violation struct {
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// String implements fmt.Stringer.
func (v Violation) String() string {
	return fmt.Sprintf("[%s] %s", v.Rule, v.Message)
}

// Definition is a validated CREATE TABLE statement for one table.
type Definition struct {
	table       string
	statement   string
	ifNotExists bool
}

// New validates statement as the creation statement for table and returns
// the accepted Definition. Any violated rule yields an INVALID_SCHEMA error
// listing all violations.
func New(table, statement string) (*Definition, error) {
	if violations := Validate(table, statement); len(violations) > 0 {
		details := make([]string, len(violations))
		for i, v := range violations {
			details[i] = v.String()
		}
		return nil, errs.NewInvalidSchema(table, details)
	}

	stmt := strings.TrimSpace(statement)
	return &Definition{
		table:       table,
		statement:   stmt,
		ifNotExists: strings.HasPrefix(stmt, ifNotExistsPrefix(table)),
	}, nil
}

// MustNew is like New but panics on error. Intended for package-level
// table declarations.
func MustNew(table, statement string) *Definition {
	def, err := New(table, statement)
	if err != nil {
		panic(err)
	}
	return def
}

// Table returns the name of the table the statement creates.
func (d *Definition) Table() string { return d.table }

// Statement returns the accepted statement with surrounding whitespace trimmed.
func (d *Definition) Statement() string { return d.statement }

// IfNotExists reports whether the statement uses CREATE TABLE IF NOT EXISTS.
func (d *Definition) IfNotExists() bool { return d.ifNotExists }

// String returns the statement.
func (d *Definition) String() string { return d.statement }

// Validate checks statement against every structural rule for table.
// Returns all violations found (does not fail-fast). An empty result means
// the statement is acceptable.
func Validate(table, statement string) []Violation {
	var violations []Violation
	stmt := strings.TrimSpace(statement)

	// S101: naming
	if !strings.HasPrefix(stmt, plainPrefix(table)) && !strings.HasPrefix(stmt, ifNotExistsPrefix(table)) {
		violations = append(violations, Violation{
			Rule:    RulePrefix,
			Message: fmt.Sprintf("statement must start with %q or %q", plainPrefix(table), ifNotExistsPrefix(table)),
		})
	}

	// S102: terminator
	if !strings.HasSuffix(stmt, ";") {
		violations = append(violations, Violation{
			Rule:    RuleTerminator,
			Message: "statement must end with ';'",
		})
	}

	// S103: primary key
	if !strings.Contains(stmt, "PRIMARY KEY") {
		violations = append(violations, Violation{
			Rule:    RulePrimaryKey,
			Message: "statement must declare a PRIMARY KEY",
		})
	}

	// S104: type token
	if !containsDataType(stmt) {
		violations = append(violations, Violation{
			Rule:    RuleDataType,
			Message: fmt.Sprintf("statement must use one of the types %s", strings.Join(DataTypes, ", ")),
		})
	}

	return violations
}

func plainPrefix(table string) string {
	return "CREATE TABLE " + table + " ("
}

func ifNotExistsPrefix(table string) string {
	return "CREATE TABLE IF NOT EXISTS " + table + " ("
}

func containsDataType(stmt string) bool {
	for _, t := range DataTypes {
		if strings.Contains(stmt, t) {
			return true
		}
	}
	return false
}
