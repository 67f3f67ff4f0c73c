package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/roach88/fundb/internal/decl"
	"github.com/roach88/fundb/internal/errs"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Operation failure (invalid declarations, database errors)
	ExitCommandError = 2 // Command error (bad arguments, missing files)
)

// CLI-level error codes. Database errors report their own codes
// (TABLE_NOT_FOUND, COLUMN_COUNT_MISMATCH, ...).
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeInvalidArgs = "E002" // Malformed argument or flag
	ErrCodeLoadFailed  = "E004" // Declaration file could not be read or parsed
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeInvalidDecl = "E101" // Declaration file failed validation
)

// ExitError represents an error with a specific exit code.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // Separate writer for verbose/diagnostic output (defaults to Writer)
	Verbose   bool
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string    `json:"status"`          // "ok" or "error"
	Data   any       `json:"data,omitempty"`  // success payload
	Error  *CLIError `json:"error,omitempty"` // error details
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code"`              // "E001", "TABLE_NOT_FOUND", etc.
	Message string `json:"message"`           // human-readable message
	Details any    `json:"details,omitempty"` // additional context
}

// ErrorDetails is the detail payload for database errors.
type ErrorDetails struct {
	Table   string   `json:"table,omitempty"`
	Column  string   `json:"column,omitempty"`
	Hint    string   `json:"hint,omitempty"`
	Details []string `json:"details,omitempty"`
}

// Success outputs a successful result. In text mode text is printed; data
// is only used for JSON.
func (f *OutputFormatter) Success(data any, text string) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "ok",
			Data:   data,
		})
	}

	fmt.Fprintln(f.Writer, text)
	return nil
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    code,
				Message: message,
				Details: details,
			},
		})
	}

	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %+v\n", details)
	}
	return nil
}

// Fail reports err and returns the ExitError the command should return.
// Database errors and invalid declarations exit with ExitFailure. An
// ExitError keeps its own code; anything else is a command error.
func (f *OutputFormatter) Fail(err error) error {
	var (
		exitErr *ExitError
		dbErr   *errs.Error
		declErr *decl.Error
	)
	switch {
	case errors.As(err, &dbErr):
		_ = f.Error(string(dbErr.Code), dbErr.Message, ErrorDetails{
			Table:   dbErr.Table,
			Column:  dbErr.Column,
			Hint:    dbErr.Hint,
			Details: dbErr.Details,
		})
		return WrapExitError(ExitFailure, string(dbErr.Code), err)
	case errors.As(err, &declErr):
		_ = f.Error(ErrCodeInvalidDecl, "invalid declarations", declErr.Problems)
		if f.Format != "json" {
			for _, p := range declErr.Problems {
				fmt.Fprintf(f.Writer, "  %s\n", p)
			}
		}
		return WrapExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(declErr.Problems)), err)
	case errors.As(err, &exitErr):
		_ = f.Error(exitCodeToErrCode(exitErr), exitErr.Error(), nil)
		return err
	default:
		_ = f.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitCommandError, ErrCodeGeneric, err)
	}
}

func exitCodeToErrCode(e *ExitError) string {
	if e.Code == ExitCommandError {
		return ErrCodeInvalidArgs
	}
	return ErrCodeGeneric
}

// VerboseLog outputs a message only if verbose mode is enabled.
// Uses ErrWriter if set, otherwise falls back to Writer.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	fmt.Fprintf(f.GetErrWriter(), format+"\n", args...)
}

// GetErrWriter returns the appropriate writer for diagnostic output.
// Returns ErrWriter if set, otherwise Writer.
func (f *OutputFormatter) GetErrWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}

// renderRows formats rows as a tab-aligned table with an optional header.
func renderRows(header []string, rows [][]any) string {
	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
	if len(header) > 0 {
		fmt.Fprintln(w, strings.Join(header, "\t"))
	}
	for _, row := range rows {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = formatCell(v)
		}
		fmt.Fprintln(w, strings.Join(cells, "\t"))
	}
	w.Flush()
	return strings.TrimRight(b.String(), "\n")
}

func formatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return fmt.Sprintf("x'%x'", x)
	default:
		return fmt.Sprint(x)
	}
}
