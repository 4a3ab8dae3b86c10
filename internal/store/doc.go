// Package store journals abacus sessions in SQLite.
//
// Three append-only tables:
//   - sessions: one row per session with the config hash and versions it ran under
//   - presses: every button press with full before/after snapshots
//   - evaluations: every "=" press with its token list and outcome
//
// # Lifetime
//
// The CLI opens MemoryPath unless --db is given, so by default nothing
// outlives the process. A file journal is for auditing (trace) and
// determinism checks (replay); sessions never load history back from it.
//
// # Ordering
//
// Rows are ordered by the session's logical seq, never by wall-clock time.
// Reads break ties with id COLLATE BINARY so results are byte-stable.
//
// # Idempotence
//
// Press and evaluation IDs are content hashes (see package ir), and inserts
// use ON CONFLICT DO NOTHING, so journaling the same press twice is harmless.
//
// # Schema
//
// schema.sql creates the tables; numbered migrations in store.go add indexes
// and are tracked in PRAGMA user_version. File journals run in WAL mode with
// synchronous=NORMAL, a 5s busy timeout and foreign keys on.
package store
