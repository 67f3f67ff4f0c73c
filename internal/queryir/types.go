package queryir

// Statement represents one SQL statement in the IR.
//
// This is a sealed interface - only types in this package implement it.
//
// Statement types:
//   - Insert: positional insert of one row
//   - Update: assignments restricted by a predicate
//   - Select: column projection restricted by an optional predicate
type Statement interface {
	statementNode() // Marker method - seals interface to this package
}

// Predicate represents a filter condition in a WHERE clause.
//
// This is a sealed interface - only types in this package implement it.
//
// Predicate types:
//   - Equals: field = ?
//   - And: all predicates must be true
type Predicate interface {
	predicateNode() // Marker method - seals interface to this package
}

// Insert represents a positional insert of a single row.
//
// Semantics:
//
//	INSERT INTO <into> VALUES (?, ?, ...)
//
// One placeholder is emitted per value; values are bound in order.
type Insert struct {
	Into   string // Table name
	Values []any  // Row values in declared column order
}

func (Insert) statementNode() {}

// Assign is a single SET assignment in an Update.
type Assign struct {
	Field string // Column to change
	Value any    // New value (bound, never interpolated)
}

// Update represents an UPDATE statement.
//
// Semantics:
//
//	UPDATE <table> SET <f1> = ?, <f2> = ? WHERE <filter>
//
// Example:
//
//	Update{
//	  Table: "users",
//	  Set:   []Assign{{Field: "name", Value: "bob"}},
//	  Filter: And{Predicates: []Predicate{
//	    Equals{Field: "name", Value: "alice"},
//	    Equals{Field: "age", Value: 30},
//	  }},
//	}
//
// Translates to:
//
//	UPDATE users SET name = ? WHERE name = ? AND age = ?
//
// with parameters ["bob", "alice", 30]. SET parameters precede WHERE
// parameters.
type Update struct {
	Table  string
	Set    []Assign  // Must be non-empty
	Filter Predicate // nil = every row
}

func (Update) statementNode() {}

// Select represents a SELECT statement.
//
// Semantics:
//
//	SELECT <columns | *> FROM <from> [WHERE <filter>]
//
// The four shapes are selected by whether Columns and Filter are set:
//
//	Columns  Filter   SQL
//	-------  ------   ---
//	empty    nil      SELECT * FROM t
//	set      nil      SELECT a, b FROM t
//	empty    set      SELECT * FROM t WHERE ...
//	set      set      SELECT a, b FROM t WHERE ...
type Select struct {
	From    string
	Columns []string  // empty = *
	Filter  Predicate // nil = no WHERE clause
}

func (Select) statementNode() {}

// Equals represents a field-equals-value predicate.
//
// Semantics:
//
//	<field> = ?
//
// Value is bound as a parameter. A nil Value binds NULL, which never
// compares equal in SQL.
type Equals struct {
	Field string
	Value any
}

func (Equals) predicateNode() {}

// And represents a conjunction of predicates (all must be true).
//
// An empty And is vacuously true and compiles to 1 = 1.
type And struct {
	Predicates []Predicate
}

func (And) predicateNode() {}

// EqualsAll builds an And of Equals predicates from parallel field/value
// slices. Returns nil when fields is empty.
func EqualsAll(fields []string, values []any) Predicate {
	if len(fields) == 0 {
		return nil
	}
	preds := make([]Predicate, len(fields))
	for i, f := range fields {
		preds[i] = Equals{Field: f, Value: values[i]}
	}
	if len(preds) == 1 {
		return preds[0]
	}
	return And{Predicates: preds}
}
