package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/fundb/internal/errs"
)

func TestNew_AcceptsWellFormedStatements(t *testing.T) {
	tests := []struct {
		name        string
		statement   string
		ifNotExists bool
	}{
		{
			name:      "plain",
			statement: "CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT);",
		},
		{
			name:        "if not exists",
			statement:   "CREATE TABLE IF NOT EXISTS users (id INT PRIMARY KEY);",
			ifNotExists: true,
		},
		{
			name:      "surrounding whitespace",
			statement: "\n\t  CREATE TABLE users (id INTEGER PRIMARY KEY, score REAL);  \n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def, err := New("users", tt.statement)
			require.NoError(t, err)
			assert.Equal(t, "users", def.Table())
			assert.Equal(t, tt.ifNotExists, def.IfNotExists())
			assert.Contains(t, tt.statement, def.Statement())
			assert.Equal(t, def.Statement(), def.String())
		})
	}
}

func TestNew_KeepsStatementVerbatim(t *testing.T) {
	stmt := "CREATE TABLE notes (id INTEGER PRIMARY KEY,   body   TEXT NOT NULL);"
	def, err := New("notes", stmt)
	require.NoError(t, err)
	assert.Equal(t, stmt, def.Statement())
}

func TestNew_RejectsEachBrokenRule(t *testing.T) {
	tests := []struct {
		name      string
		table     string
		statement string
		rule      string
	}{
		{
			name:      "wrong table name",
			table:     "users",
			statement: "CREATE TABLE accounts (id INTEGER PRIMARY KEY);",
			rule:      RulePrefix,
		},
		{
			name:      "missing paren after name",
			table:     "users",
			statement: "CREATE TABLE users(id INTEGER PRIMARY KEY);",
			rule:      RulePrefix,
		},
		{
			name:      "not a create statement",
			table:     "users",
			statement: "DROP TABLE users (id INTEGER PRIMARY KEY);",
			rule:      RulePrefix,
		},
		{
			name:      "missing terminator",
			table:     "users",
			statement: "CREATE TABLE users (id INTEGER PRIMARY KEY)",
			rule:      RuleTerminator,
		},
		{
			name:      "missing primary key",
			table:     "users",
			statement: "CREATE TABLE users (id INTEGER, name TEXT);",
			rule:      RulePrimaryKey,
		},
		{
			name:      "lowercase primary key",
			table:     "users",
			statement: "CREATE TABLE users (id INTEGER primary key);",
			rule:      RulePrimaryKey,
		},
		{
			name:      "missing type token",
			table:     "users",
			statement: "CREATE TABLE users (id PRIMARY KEY, name);",
			rule:      RuleDataType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def, err := New(tt.table, tt.statement)
			require.Error(t, err)
			assert.Nil(t, def)
			assert.True(t, errs.IsInvalidSchema(err))

			var found bool
			for _, v := range Validate(tt.table, tt.statement) {
				if v.Rule == tt.rule {
					found = true
				}
			}
			assert.True(t, found, "expected rule %s to be violated", tt.rule)
		})
	}
}

func TestValidate_CollectsAllViolations(t *testing.T) {
	violations := Validate("users", "SELECT 1")
	require.Len(t, violations, 4)

	rules := make([]string, len(violations))
	for i, v := range violations {
		rules[i] = v.Rule
	}
	assert.Equal(t, []string{RulePrefix, RuleTerminator, RulePrimaryKey, RuleDataType}, rules)
}

func TestValidate_EveryDataTypeToken(t *testing.T) {
	for _, typ := range DataTypes {
		t.Run(typ, func(t *testing.T) {
			stmt := "CREATE TABLE t (k " + typ + " PRIMARY KEY);"
			assert.Empty(t, Validate("t", stmt))
		})
	}
}

func TestMustNew_Panics(t *testing.T) {
	assert.Panics(t, func() { MustNew("t", "nope") })
	assert.NotPanics(t, func() { MustNew("t", "CREATE TABLE t (k INT PRIMARY KEY);") })
}
