package table

import (
	"fmt"

	"github.com/roach88/fundb/internal/errs"
)

// Entry is one update instruction.
//
// A search entry (Change false) restricts the update to rows where
// Column = Match. A change entry (Change true) restricts the same way and
// also sets Column = New on the matching rows.
type Entry struct {
	Column string
	Match  any
	New    any
	Change bool
}

// Match returns a search entry: rows where column = value.
func Match(column string, value any) Entry {
	return Entry{Column: column, Match: value}
}

// Change returns a change entry: rows where column = match get column = value.
func Change(column string, match, value any) Entry {
	return Entry{Column: column, Match: match, New: value, Change: true}
}

// EntryFrom converts a loose two- or three-element list into an Entry.
// The first element must be the column name.
func EntryFrom(parts []any) (Entry, error) {
	if len(parts) != 2 && len(parts) != 3 {
		return Entry{}, errs.NewInvalidUpdate("", fmt.Sprintf(
			"update entry must be (column, current_value) or (column, current_value, new_value), got %d elements", len(parts)))
	}

	column, ok := parts[0].(string)
	if !ok {
		return Entry{}, errs.NewInvalidUpdate("", fmt.Sprintf("update entry column must be a string, got %T", parts[0]))
	}

	if len(parts) == 3 {
		return Change(column, parts[1], parts[2]), nil
	}
	return Match(column, parts[1]), nil
}

// String renders the entry for logs.
func (e Entry) String() string {
	if e.Change {
		return fmt.Sprintf("%s: %v -> %v", e.Column, e.Match, e.New)
	}
	return fmt.Sprintf("%s = %v", e.Column, e.Match)
}
