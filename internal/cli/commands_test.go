package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDecls = `tables:
  - name: users
    columns: [id, name, age]
    schema: CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT, age INT);
  - name: notes
    columns: [id, body]
    schema: CREATE TABLE IF NOT EXISTS notes (id INTEGER PRIMARY KEY, body TEXT);
`

// fixture is a database path plus a declaration file in a temp dir.
type fixture struct {
	db     string
	tables string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	dir := t.TempDir()
	tables := filepath.Join(dir, "tables.yaml")
	require.NoError(t, os.WriteFile(tables, []byte(testDecls), 0o644))
	return fixture{db: filepath.Join(dir, "test.db"), tables: tables}
}

// run executes the root command with args and returns stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// runJSON executes with --format json and decodes the response.
func runJSON(t *testing.T, args ...string) (CLIResponse, error) {
	t.Helper()
	out, err := run(t, append([]string{"--format", "json"}, args...)...)
	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp), "output: %s", out)
	return resp, err
}

func (f fixture) args(args ...string) []string {
	return append([]string{"--db", f.db, "--tables", f.tables}, args...)
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	assert.Equal(t, "fundb", cmd.Use)

	for _, name := range []string{"validate", "tables", "create", "insert", "update", "select"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		})
	}

	verbose := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verbose)
	assert.Equal(t, "v", verbose.Shorthand)

	format := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, format)
	assert.Equal(t, "text", format.DefValue)
}

func TestRootCommand_InvalidFormat(t *testing.T) {
	_, err := run(t, "--format", "xml", "validate", "x.yaml")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestValidate(t *testing.T) {
	f := newFixture(t)

	out, err := run(t, "validate", f.tables)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ 2 table(s) valid")

	resp, err := runJSON(t, "validate", f.tables)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Status)
}

func TestValidate_InvalidDeclarations(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`tables:
  - name: users
    columns: [id]
    schema: CREATE TABLE users (id INTEGER PRIMARY KEY)
`), 0o644))

	out, err := run(t, "validate", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Error [E101]")
	assert.Contains(t, out, "[S102]")
}

func TestValidate_MissingFile(t *testing.T) {
	resp, err := runJSON(t, "validate", filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Equal(t, "error", resp.Status)
	assert.Contains(t, resp.Error.Message, "not found")
}

func TestInsertThenSelect(t *testing.T) {
	f := newFixture(t)

	_, err := run(t, f.args("insert", "users", "1", "alice", "30")...)
	require.NoError(t, err)
	_, err = run(t, f.args("insert", "users", "2", "bob", "30")...)
	require.NoError(t, err)

	resp, err := runJSON(t, f.args("select", "users", "name", "--where", "id=2")...)
	require.NoError(t, err)
	data := resp.Data.(map[string]any)
	assert.Equal(t, []any{[]any{"bob"}}, data["rows"])
	assert.Equal(t, []any{"name"}, data["columns"])

	out, err := run(t, f.args("select", "users")...)
	require.NoError(t, err)
	assert.Contains(t, out, "id  name   age")
	assert.Contains(t, out, "1   alice  30")
}

func TestInsert_QuotedNumberStaysText(t *testing.T) {
	f := newFixture(t)

	_, err := run(t, f.args("insert", "notes", "1", `"42"`)...)
	require.NoError(t, err)

	resp, err := runJSON(t, f.args("select", "notes", "body")...)
	require.NoError(t, err)
	data := resp.Data.(map[string]any)
	assert.Equal(t, []any{[]any{"42"}}, data["rows"])
}

func TestInsert_ColumnCountMismatch(t *testing.T) {
	f := newFixture(t)

	resp, err := runJSON(t, f.args("insert", "users", "1", "alice")...)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Equal(t, "COLUMN_COUNT_MISMATCH", resp.Error.Code)
}

func TestInsert_UndeclaredTable(t *testing.T) {
	f := newFixture(t)

	resp, err := runJSON(t, f.args("insert", "ghosts", "1")...)
	require.Error(t, err)
	assert.Equal(t, "TABLE_NOT_FOUND", resp.Error.Code)
}

func TestInsert_RequiresDB(t *testing.T) {
	_, err := run(t, "insert", "users", "1")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestUpdate(t *testing.T) {
	f := newFixture(t)
	_, err := run(t, f.args("insert", "users", "1", "alice", "30")...)
	require.NoError(t, err)
	_, err = run(t, f.args("insert", "users", "2", "alice", "40")...)
	require.NoError(t, err)

	resp, err := runJSON(t, f.args("update", "users", "--match", "id=2", "--change", "age=40=41")...)
	require.NoError(t, err)
	data := resp.Data.(map[string]any)
	assert.Equal(t, float64(1), data["rows_affected"])

	resp, err = runJSON(t, f.args("select", "users", "age", "--where", "name=alice")...)
	require.NoError(t, err)
	data = resp.Data.(map[string]any)
	assert.ElementsMatch(t, []any{[]any{float64(30)}, []any{float64(41)}}, data["rows"])
}

func TestUpdate_Errors(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name     string
		args     []string
		wantCode string
		wantExit int
	}{
		{"no change", []string{"--match", "id=1"}, "INVALID_UPDATE", ExitFailure},
		{"undeclared column", []string{"--change", "email=a=b"}, "COLUMN_NOT_FOUND", ExitFailure},
		{"malformed change", []string{"--change", "age=30"}, ErrCodeInvalidArgs, ExitCommandError},
		{"malformed match", []string{"--match", "id", "--change", "age=1=2"}, ErrCodeInvalidArgs, ExitCommandError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := runJSON(t, f.args(append([]string{"update", "users"}, tt.args...)...)...)
			require.Error(t, err)
			assert.Equal(t, tt.wantExit, GetExitCode(err))
			assert.Equal(t, tt.wantCode, resp.Error.Code)
		})
	}
}

func TestCreate(t *testing.T) {
	f := newFixture(t)

	resp, err := runJSON(t, f.args("create", "notes")...)
	require.NoError(t, err)
	data := resp.Data.(map[string]any)
	assert.Equal(t, []any{"notes"}, data["created"])

	// users has no IF NOT EXISTS, so a second create fails in the engine.
	_, err = run(t, f.args("create", "users")...)
	require.NoError(t, err)
	resp, err = runJSON(t, f.args("create", "users")...)
	require.Error(t, err)
	assert.Equal(t, "ENGINE", resp.Error.Code)
}

func TestCreate_UndeclaredTable(t *testing.T) {
	f := newFixture(t)

	resp, err := runJSON(t, f.args("create", "ghosts")...)
	require.Error(t, err)
	assert.Equal(t, "TABLE_NOT_FOUND", resp.Error.Code)
}

func TestTables(t *testing.T) {
	f := newFixture(t)

	resp, err := runJSON(t, f.args("tables")...)
	require.NoError(t, err)
	data := resp.Data.(map[string]any)
	declared := data["declared"].([]any)
	require.Len(t, declared, 2)
	assert.Equal(t, "users", declared[0].(map[string]any)["name"])
	assert.Equal(t, []any{"notes", "users"}, data["database"])

	out, err := run(t, f.args("tables")...)
	require.NoError(t, err)
	assert.Contains(t, out, "users (id, name, age)")
}

func TestTables_NoDeclarations(t *testing.T) {
	db := filepath.Join(t.TempDir(), "test.db")

	out, err := run(t, "--db", db, "tables")
	require.NoError(t, err)
	assert.Contains(t, out, "Declared:\n  (none)")
	assert.Contains(t, out, "Database:\n  (none)")
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		in   string
		want any
	}{
		{"42", int64(42)},
		{"-7", int64(-7)},
		{"1.5", 1.5},
		{`"42"`, "42"},
		{"true", true},
		{"null", nil},
		{"alice", "alice"},
		{"", ""},
		{"[1,2]", "[1,2]"},
		{`{"a":1}`, `{"a":1}`},
		{"1 2", "1 2"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parseValue(tt.in))
		})
	}
}
