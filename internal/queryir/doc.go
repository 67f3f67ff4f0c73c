// Package queryir provides the statement intermediate representation that
// table operations build and the SQL compiler consumes.
//
// ARCHITECTURE:
//
//	[table.Insert/Update/Select] → [queryir.Statement] → [querysql.Compile] → SQLite
//
// Table code never concatenates SQL. It describes what it wants as a
// Statement, Validate checks identifiers and values, and the compiler emits
// parameterized SQL in which every value is a bound placeholder.
//
// SEALED INTERFACES:
//
// Statement and Predicate are sealed interfaces using the marker method
// pattern. Only types in this package implement them, so the compiler and
// validator can type switch exhaustively:
//
//	switch s := stmt.(type) {
//	case *Insert:
//	case *Update:
//	case *Select:
//	}
//
// IDENTIFIERS:
//
// Table and column names are written into the SQL text, so they must be plain
// identifiers ([A-Za-z_][A-Za-z0-9_]*). Values are never written into the
// SQL text.
package queryir
