// Package ir provides the canonical record types abacus writes to its journal.
//
// This package contains record definitions and their canonical encoding only.
// All other internal packages may import ir; ir imports nothing internal.
//
// Key design constraints:
//   - NO float types in records - results are journaled as formatted strings
//   - All JSON tags use snake_case
//   - Logical clocks (seq) only, never wall-clock timestamps
//   - IDs are content-addressed: SHA-256 over canonical JSON with a domain prefix
package ir
