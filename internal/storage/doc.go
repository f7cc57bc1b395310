// Package storage persists the audit trail of sensitive admin commands.
//
// Drivers:
//   - "file": dependency-free JSON Lines file
//   - "sqlite": SQLite database file (modernc.org/sqlite, no cgo)
package storage
