// Package store provides the SQLite binding used by fundb.
//
// The store owns exactly one *sql.DB limited to a single open connection,
// so an open transaction and every later statement share the same SQLite
// connection (required for ":memory:" databases).
//
// # Database Configuration
//
//   - journal_mode: WAL by default, configurable
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout: 5000ms by default, configurable
//   - foreign_keys=ON: Enforce referential integrity
//
// # Error Classification
//
// Table existence is answered by querying sqlite_master (TableExists), never
// by matching the text of a "no such table" failure. Failures reported by the
// driver are wrapped by Classify into ENGINE errors that keep the original
// sqlite3.Error in their chain.
package store
