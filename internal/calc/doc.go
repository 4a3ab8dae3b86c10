// Package calc implements the abacus calculator engine.
//
// The engine is a pure state machine over button presses. Every handler takes
// the current State and returns a new one; nothing is mutated in place and no
// handler can fail. Collaborators (the REPL, the MCP server, the scenario
// harness) feed events in and render the three strings produced by
// State.Render.
//
// EVALUATION:
//
// Expressions are folded strictly left to right. There is no operator
// precedence: "2 + 3 * 4" evaluates to 20.
//
// ERRORS:
//
// Evaluation failures are ordinary outcomes, not panics. CalculateResult turns
// them into a display of "Error" (or "Div/0" for division by zero) and leaves
// the rest of the state untouched so the user can keep typing.
package calc
