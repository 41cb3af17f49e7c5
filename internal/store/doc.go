// Package store provides SQLite-backed storage for record collections.
//
// Each collection is a row in collections (name, primary key, record count)
// plus one row per record in records, keyed by (collection, seq). Records
// are stored as canonical JSON, so the same record always produces the same
// bytes, and seq preserves the collection's original order.
//
// Relations can be evaluated in SQLite through Query, which compiles them
// with package querysql. The in-memory pipeline remains the reference
// behavior; Query exists for explain output and for cross-checking.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
