package calc

import "strings"

// InitialDisplay is what the display shows before any input.
const InitialDisplay = "0"

// State is the complete calculator state.
//
// State is a value: handlers return a fresh State and never modify the slices
// of the one they were given.
//
// INVARIANTS:
//   - Display is never empty
//   - CurrentInput holds at most one "." and at most the engine's input limit
//   - Expression alternates operand, operator, operand, ...
//   - History only grows, and only on a successful evaluation
type State struct {
	// Display is the primary readout.
	Display string `json:"display"`

	// CurrentInput is the operand being typed. Empty when no operand is in
	// progress (start, right after an operator, right after a result).
	CurrentInput string `json:"current_input"`

	// Expression holds the committed tokens in evaluation order.
	Expression []string `json:"expression"`

	// History holds "expr = result" lines, oldest first.
	History []string `json:"history"`
}

// Initial returns the start state: display "0" and nothing else.
func Initial() State {
	return State{Display: InitialDisplay}
}

// Phase names where a State sits in the input cycle.
type Phase int

const (
	// PhaseStart means nothing has been entered.
	PhaseStart Phase = iota
	// PhaseEnteringOperand means digits are being typed into CurrentInput.
	PhaseEnteringOperand
	// PhaseAwaitingOperand means the expression ends in an operator.
	PhaseAwaitingOperand
	// PhaseResult means the expression ends in an operand with no input
	// pending, which only happens after a successful evaluation.
	PhaseResult
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseStart:
		return "start"
	case PhaseEnteringOperand:
		return "entering_operand"
	case PhaseAwaitingOperand:
		return "awaiting_operand"
	case PhaseResult:
		return "result"
	default:
		return "unknown"
	}
}

// Phase derives the input phase from the shape of CurrentInput and Expression.
func (s State) Phase() Phase {
	switch {
	case s.CurrentInput != "":
		return PhaseEnteringOperand
	case len(s.Expression) == 0:
		return PhaseStart
	case IsOperator(s.Expression[len(s.Expression)-1]):
		return PhaseAwaitingOperand
	default:
		return PhaseResult
	}
}

// ShowsError reports whether the display holds an evaluation failure.
// The condition is display-only; input continues against the untouched fields.
func (s State) ShowsError() bool {
	return s.Display == DisplayError || s.Display == DisplayDivByZero
}

// Tokens returns the expression with the pending operand appended.
// This is the token list "=" evaluates.
func (s State) Tokens() []string {
	tokens := make([]string, 0, len(s.Expression)+1)
	tokens = append(tokens, s.Expression...)
	if s.CurrentInput != "" {
		tokens = append(tokens, s.CurrentInput)
	}
	return tokens
}

// Equal reports whether two states hold the same values.
// A nil and an empty slice compare equal.
func (s State) Equal(other State) bool {
	return s.Display == other.Display &&
		s.CurrentInput == other.CurrentInput &&
		equalStrings(s.Expression, other.Expression) &&
		equalStrings(s.History, other.History)
}

// Render is the three strings a collaborator draws.
type Render struct {
	History    string `json:"history"`
	Expression string `json:"expression"`
	Display    string `json:"display"`
}

// Render produces the collaborator view of the state.
//
// Expression is the committed tokens joined by spaces, then a space, then the
// pending input. The separating space is always present, matching the
// on-screen layout of the keypad calculator this engine drives.
func (s State) Render() Render {
	return Render{
		History:    strings.Join(s.History, "\n"),
		Expression: strings.Join(s.Expression, " ") + " " + s.CurrentInput,
		Display:    s.Display,
	}
}

// withDisplay returns a copy of s showing text. Slices are shared because
// neither copy ever writes to them.
func (s State) withDisplay(text string) State {
	s.Display = text
	return s
}

// appendCopy returns a new slice holding xs followed by more.
// The backing array of xs is never written.
func appendCopy(xs []string, more ...string) []string {
	out := make([]string, 0, len(xs)+len(more))
	out = append(out, xs...)
	return append(out, more...)
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
