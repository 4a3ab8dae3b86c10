// Package session runs a calculator session: one latest State, a logical
// clock, an optional SQLite journal and the collaborators that render it.
//
// A Session is the single writer of its state. Synchronous callers use Press
// or Apply; asynchronous collaborators (a REPL reader, a tool server) use
// Enqueue and let one goroutine drive Run. Either way, presses are applied in
// arrival order and every subscriber sees every state.
//
// # Journal
//
// When a store is attached each press is written with its before and after
// snapshots, and each "=" press with its evaluation, in one transaction:
//
//	[key] → [Resolve] → [Apply] → [WritePressAtomic] → [notify subscribers]
//
// Press IDs are content-addressed (ir.PressID) and snapshots are hashed with
// ir.SnapshotHash, so Replay can re-fold a journaled session through a fresh
// engine and prove it reaches byte-identical states.
//
// The journal is for audit only. A new Session always starts from
// calc.Initial(); nothing is restored from a previous run.
package session
