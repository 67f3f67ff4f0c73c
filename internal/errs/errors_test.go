package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Format(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "table only",
			err:  NewTableNotFound("users", "table not in database"),
			want: "TABLE_NOT_FOUND: table not in database (table=users)",
		},
		{
			name: "table and column",
			err:  NewColumnNotFound("users", "nope"),
			want: `COLUMN_NOT_FOUND: column "nope" does not exist (table=users, column=nope)`,
		},
		{
			name: "details",
			err:  NewInvalidSchema("users", []string{"missing PRIMARY KEY", "missing ';'"}),
			want: "INVALID_SCHEMA: create table statement is invalid (table=users): missing PRIMARY KEY; missing ';'",
		},
		{
			name: "hint",
			err: &Error{
				Code:    CodeTableNotFound,
				Message: "table not in database",
				Table:   "users",
				Hint:    "table has a schema; perhaps use Create",
			},
			want: "TABLE_NOT_FOUND: table not in database (table=users); table has a schema; perhaps use Create",
		},
		{
			name: "cause",
			err:  Engine("", "open", errors.New("disk I/O error")),
			want: "ENGINE: open: disk I/O error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestPredicates_MatchWrappedErrors(t *testing.T) {
	base := NewColumnCount("users", 2, 3)
	wrapped := fmt.Errorf("insert: %w", base)

	assert.True(t, IsColumnCount(wrapped))
	assert.False(t, IsColumnNotFound(wrapped))
	assert.Equal(t, CodeColumnCount, CodeOf(wrapped))
}

func TestPredicates_NonDomainErrors(t *testing.T) {
	assert.False(t, IsTableNotFound(nil))
	assert.False(t, IsEngine(errors.New("plain")))
	assert.Equal(t, Code(""), CodeOf(errors.New("plain")))
}

func TestEngine_UnwrapsCause(t *testing.T) {
	cause := errors.New("boom")
	err := Engine("users", "insert", cause)

	assert.True(t, errors.Is(err, cause))
	assert.True(t, IsEngine(err))
}

func TestConstructors_SetCodes(t *testing.T) {
	assert.True(t, IsInvalidUpdate(NewInvalidUpdate("t", "m")))
	assert.True(t, IsSchemaNotRegistered(NewSchemaNotRegistered("t")))
	assert.True(t, IsDuplicateTable(NewDuplicateTable("t")))
	assert.True(t, IsInvalidIdentifier(NewInvalidIdentifier("t", []string{"x"})))
	assert.True(t, IsInvalidSchema(NewInvalidSchema("t", nil)))
}
