// Package errs defines the structured error kinds reported by fundb.
//
// Every validation failure and every engine failure surfaces as an *Error
// carrying a Code. Callers classify errors with the Is* helpers, which use
// errors.As and therefore match wrapped errors too.
package errs

import (
	"errors"
	"fmt"
	"strings"
)

// Code categorizes an Error.
type Code string

const (
	// CodeTableNotFound indicates a table that is not registered with the
	// Database or does not exist in the backing store.
	CodeTableNotFound Code = "TABLE_NOT_FOUND"

	// CodeColumnNotFound indicates a column that the table does not declare.
	CodeColumnNotFound Code = "COLUMN_NOT_FOUND"

	// CodeColumnCount indicates an insert whose value count differs from the
	// declared column count.
	CodeColumnCount Code = "COLUMN_COUNT_MISMATCH"

	// CodeInvalidUpdate indicates malformed update entries.
	CodeInvalidUpdate Code = "INVALID_UPDATE"

	// CodeInvalidSchema indicates a schema definition that failed validation.
	CodeInvalidSchema Code = "INVALID_SCHEMA"

	// CodeSchemaNotRegistered indicates a create request for a table that
	// carries no schema definition.
	CodeSchemaNotRegistered Code = "SCHEMA_NOT_REGISTERED"

	// CodeDuplicateTable indicates a table name registered twice.
	CodeDuplicateTable Code = "DUPLICATE_TABLE"

	// CodeInvalidIdentifier indicates a table or column name that cannot be
	// used as a bare SQL identifier.
	CodeInvalidIdentifier Code = "INVALID_IDENTIFIER"

	// CodeEngine is the pass-through for failures reported by SQLite.
	CodeEngine Code = "ENGINE"
)

// Error is the structured error returned by fundb operations.
type Error struct {
	// Code identifies the error category.
	Code Code

	// Message is a human-readable description.
	Message string

	// Table names the affected table, if any.
	Table string

	// Column names the affected column, if any.
	Column string

	// Hint suggests a corrective action.
	Hint string

	// Details lists individual problems (e.g. every violated schema rule).
	Details []string

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Code))
	b.WriteString(": ")
	b.WriteString(e.Message)
	switch {
	case e.Table != "" && e.Column != "":
		fmt.Fprintf(&b, " (table=%s, column=%s)", e.Table, e.Column)
	case e.Table != "":
		fmt.Fprintf(&b, " (table=%s)", e.Table)
	}
	if len(e.Details) > 0 {
		b.WriteString(": ")
		b.WriteString(strings.Join(e.Details, "; "))
	}
	if e.Hint != "" {
		b.WriteString("; ")
		b.WriteString(e.Hint)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// CodeOf returns the Code of the first *Error in err's chain, or "" if none.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

func hasCode(err error, code Code) bool {
	return err != nil && CodeOf(err) == code
}

// IsTableNotFound reports whether err is a TABLE_NOT_FOUND error.
func IsTableNotFound(err error) bool { return hasCode(err, CodeTableNotFound) }

// IsColumnNotFound reports whether err is a COLUMN_NOT_FOUND error.
func IsColumnNotFound(err error) bool { return hasCode(err, CodeColumnNotFound) }

// IsColumnCount reports whether err is a COLUMN_COUNT_MISMATCH error.
func IsColumnCount(err error) bool { return hasCode(err, CodeColumnCount) }

// IsInvalidUpdate reports whether err is an INVALID_UPDATE error.
func IsInvalidUpdate(err error) bool { return hasCode(err, CodeInvalidUpdate) }

// IsInvalidSchema reports whether err is an INVALID_SCHEMA error.
func IsInvalidSchema(err error) bool { return hasCode(err, CodeInvalidSchema) }

// IsSchemaNotRegistered reports whether err is a SCHEMA_NOT_REGISTERED error.
func IsSchemaNotRegistered(err error) bool { return hasCode(err, CodeSchemaNotRegistered) }

// IsDuplicateTable reports whether err is a DUPLICATE_TABLE error.
func IsDuplicateTable(err error) bool { return hasCode(err, CodeDuplicateTable) }

// IsInvalidIdentifier reports whether err is an INVALID_IDENTIFIER error.
func IsInvalidIdentifier(err error) bool { return hasCode(err, CodeInvalidIdentifier) }

// IsEngine reports whether err is an ENGINE error.
func IsEngine(err error) bool { return hasCode(err, CodeEngine) }

// NewTableNotFound creates a TABLE_NOT_FOUND error.
func NewTableNotFound(table, message string) *Error {
	return &Error{Code: CodeTableNotFound, Message: message, Table: table}
}

// NewColumnNotFound creates a COLUMN_NOT_FOUND error.
func NewColumnNotFound(table, column string) *Error {
	return &Error{
		Code:    CodeColumnNotFound,
		Message: fmt.Sprintf("column %q does not exist", column),
		Table:   table,
		Column:  column,
	}
}

// NewColumnCount creates a COLUMN_COUNT_MISMATCH error.
func NewColumnCount(table string, got, want int) *Error {
	return &Error{
		Code:    CodeColumnCount,
		Message: fmt.Sprintf("amount of values (%d) does not match amount of columns (%d)", got, want),
		Table:   table,
	}
}

// NewInvalidUpdate creates an INVALID_UPDATE error.
func NewInvalidUpdate(table, message string) *Error {
	return &Error{Code: CodeInvalidUpdate, Message: message, Table: table}
}

// NewInvalidSchema creates an INVALID_SCHEMA error listing every violation.
func NewInvalidSchema(table string, violations []string) *Error {
	return &Error{
		Code:    CodeInvalidSchema,
		Message: "create table statement is invalid",
		Table:   table,
		Details: violations,
	}
}

// NewSchemaNotRegistered creates a SCHEMA_NOT_REGISTERED error.
func NewSchemaNotRegistered(table string) *Error {
	return &Error{
		Code:    CodeSchemaNotRegistered,
		Message: "no schema registered for this table",
		Table:   table,
	}
}

// NewDuplicateTable creates a DUPLICATE_TABLE error.
func NewDuplicateTable(table string) *Error {
	return &Error{
		Code:    CodeDuplicateTable,
		Message: "table name already registered",
		Table:   table,
	}
}

// NewInvalidIdentifier creates an INVALID_IDENTIFIER error.
func NewInvalidIdentifier(table string, problems []string) *Error {
	return &Error{
		Code:    CodeInvalidIdentifier,
		Message: "statement uses invalid identifiers or values",
		Table:   table,
		Details: problems,
	}
}

// Engine wraps a failure reported by SQLite.
func Engine(table, message string, err error) *Error {
	return &Error{Code: CodeEngine, Message: message, Table: table, Err: err}
}
