// Package database opens the application database and wires the
// per-collection repositories found in its subpackages. Each
// collection gets its own repository over a shared SQLite file, so
// callers depend on small query interfaces instead of a process-wide
// store.
package database
