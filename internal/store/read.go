package store

import (
	"database/sql"
	"strings"
)

// ScanRows reads every remaining row from rows and closes it.
//
// Values are normalized so callers see plain Go types: INTEGER as int64,
// REAL as float64, TEXT as string, BLOB as []byte and NULL as nil.
//
// Returns an empty slice (not nil) if there are no rows.
func ScanRows(rows *sql.Rows) ([][]any, error) {
	defer rows.Close()

	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, Classify("", "column types", err)
	}

	result := [][]any{}
	for rows.Next() {
		values := make([]any, len(types))
		ptrs := make([]any, len(types))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, Classify("", "scan row", err)
		}
		for i, v := range values {
			values[i] = normalize(types[i], v)
		}
		result = append(result, values)
	}

	if err := rows.Err(); err != nil {
		return nil, Classify("", "iterate rows", err)
	}

	return result, nil
}

// normalize turns driver byte slices into strings unless the column is
// declared as a BLOB.
func normalize(ct *sql.ColumnType, v any) any {
	b, ok := v.([]byte)
	if !ok {
		return v
	}
	if strings.Contains(strings.ToUpper(ct.DatabaseTypeName()), "BLOB") {
		out := make([]byte, len(b))
		copy(out, b)
		return out
	}
	return string(b)
}
