package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/fundb/internal/database"
	"github.com/roach88/fundb/internal/decl"
	"github.com/roach88/fundb/internal/errs"
	"github.com/roach88/fundb/internal/table"
)

// newFormatter builds the formatter for a command. Verbose logs go to
// stderr to avoid corrupting JSON.
func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}

// newLogger returns a text logger on w at Info, or Debug when verbose.
func newLogger(opts *RootOptions, w io.Writer) *slog.Logger {
	logLevel := slog.LevelInfo
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: logLevel}))
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// loadTables loads the --tables declaration file. No file means no tables.
func loadTables(path string) ([]*table.Table, error) {
	if path == "" {
		return nil, nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil, NewExitError(ExitCommandError, fmt.Sprintf("%s: declaration file not found: %s", ErrCodeNotFound, path))
	}

	f, err := decl.Load(path)
	if err != nil {
		var declErr *decl.Error
		if errors.As(err, &declErr) {
			return nil, err
		}
		return nil, WrapExitError(ExitCommandError, ErrCodeLoadFailed, err)
	}
	return f.Build()
}

// openDatabase opens --db. When register is set, every declared table is
// registered (and created when absent but declared with a schema).
// The declared tables are returned either way.
func openDatabase(opts *RootOptions, cmd *cobra.Command, register bool) (*database.Database, []*table.Table, error) {
	if opts.DB == "" {
		return nil, nil, NewExitError(ExitCommandError, "--db is required")
	}

	tables, err := loadTables(opts.Tables)
	if err != nil {
		return nil, nil, err
	}

	cfg := database.Config{
		Path:   opts.DB,
		Logger: newLogger(opts, cmd.ErrOrStderr()),
	}
	var registered []*table.Table
	if register {
		registered = tables
	}

	db, err := database.OpenConfig(commandContext(cmd), cfg, registered...)
	if err != nil {
		return nil, nil, err
	}
	return db, tables, nil
}

// lookupTable finds a registered table by name.
func lookupTable(db *database.Database, name string) (*table.Table, error) {
	t, ok := db.Table(name)
	if !ok {
		return nil, errs.NewTableNotFound(name, "table is not declared")
	}
	return t, nil
}

// parseValue reads a command-line value as a JSON scalar (number, string,
// boolean or null). Anything else is taken as a raw string.
func parseValue(s string) any {
	dec := json.NewDecoder(bytes.NewReader([]byte(s)))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil || dec.More() {
		return s
	}

	switch x := v.(type) {
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return i
		}
		if f, err := x.Float64(); err == nil {
			return f
		}
		return s
	case string, bool, nil:
		return x
	default:
		return s
	}
}

// parseAssignment splits "column=value".
func parseAssignment(flag, s string) (string, any, error) {
	column, value, ok := strings.Cut(s, "=")
	if !ok || column == "" {
		return "", nil, NewExitError(ExitCommandError, fmt.Sprintf("invalid --%s %q: want column=value", flag, s))
	}
	return column, parseValue(value), nil
}

// parseChange splits "column=old=new".
func parseChange(s string) (table.Entry, error) {
	parts := strings.SplitN(s, "=", 3)
	if len(parts) != 3 || parts[0] == "" {
		return table.Entry{}, NewExitError(ExitCommandError, fmt.Sprintf("invalid --change %q: want column=old=new", s))
	}
	return table.Change(parts[0], parseValue(parts[1]), parseValue(parts[2])), nil
}
