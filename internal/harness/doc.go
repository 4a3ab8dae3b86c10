// Package harness runs YAML calculator scenarios against a real session.
//
// A scenario is a list of key presses, optionally with the state expected
// after each step, plus assertions on the final state:
//
//	name: chaining
//	description: A result feeds the next operation
//	steps:
//	  - keys: ["2", "+", "3", "="]
//	    expect:
//	      display: "5"
//	  - keys: ["+", "2", "="]
//	    expect:
//	      display: "7"
//	assertions:
//	  - type: history_order
//	    lines: ["2 + 3 = 5", "5 + 2 = 7"]
//
// Every scenario runs in a fresh session journaled to an in-memory SQLite
// store with a fixed session ID. After the last step the journal is replayed
// through a fresh engine, so every scenario is also a determinism check.
//
// # Transcripts
//
// Each press adds one transcript line:
//
//	<seq> <key> -> <display> | <tokens>
//
// where tokens is the expression with the pending operand, space separated.
// The "| <tokens>" column is left out when there are no tokens.
// RunWithGolden compares the transcript against
// testdata/golden/<name>.golden. To regenerate golden files, run:
//
//	go test ./internal/harness -update
package harness
