package calc

import (
	"strings"
)

// DefaultMaxInputLength caps the characters in a single operand.
const DefaultMaxInputLength = 15

// Engine applies button presses to calculator states.
//
// Engine holds configuration only. It is safe for concurrent use because
// every handler is a pure function of its arguments.
type Engine struct {
	maxInputLength int
	fractionDigits int
}

// Option configures an Engine.
type Option func(*Engine)

// WithMaxInputLength sets the operand length cap.
//
// Default: 15 (DefaultMaxInputLength). Values below 1 are ignored.
func WithMaxInputLength(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxInputLength = n
		}
	}
}

// WithFractionDigits sets how many fractional digits results are rounded to.
//
// Default: 2 (DefaultFractionDigits). Negative values are ignored.
func WithFractionDigits(n int) Option {
	return func(e *Engine) {
		if n >= 0 {
			e.fractionDigits = n
		}
	}
}

// New creates an Engine. With no options it behaves as the standard
// keypad calculator: 15-character operands, 2 fractional digits.
func New(opts ...Option) *Engine {
	e := &Engine{
		maxInputLength: DefaultMaxInputLength,
		fractionDigits: DefaultFractionDigits,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// MaxInputLength returns the configured operand length cap.
func (e *Engine) MaxInputLength() int {
	return e.maxInputLength
}

// FractionDigits returns the configured result precision.
func (e *Engine) FractionDigits() int {
	return e.fractionDigits
}

// HandleDigit appends d to the pending operand.
//
// A lone "0" is replaced rather than extended. At the length cap, or when d
// is not a single digit, s is returned unchanged.
func (e *Engine) HandleDigit(d string, s State) State {
	if !isDigit(d) || len(s.CurrentInput) >= e.maxInputLength {
		return s
	}

	input := s.CurrentInput + d
	if s.CurrentInput == "0" {
		input = d
	}

	s.CurrentInput = input
	s.Display = input
	return s
}

// HandleDecimal adds a decimal point to the pending operand.
//
// An empty operand becomes "0.". A second point is ignored.
func (e *Engine) HandleDecimal(s State) State {
	if strings.Contains(s.CurrentInput, ".") {
		return s
	}

	input := s.CurrentInput + "."
	if s.CurrentInput == "" {
		input = "0."
	}

	s.CurrentInput = input
	s.Display = input
	return s
}

// HandleOperator commits the pending operand followed by op.
//
// With no operand pending, a trailing operator is replaced by op so that
// only the most recent of several consecutive operators survives, and a
// trailing result gets op appended so the next operand chains from it. An
// operator pressed before any operand is dropped, as is anything that is
// not one of + - * /.
func (e *Engine) HandleOperator(op string, s State) State {
	if !IsOperator(op) {
		return s
	}

	if s.CurrentInput != "" {
		return State{
			Display:    op,
			Expression: appendCopy(s.Expression, s.CurrentInput, op),
			History:    s.History,
		}
	}

	n := len(s.Expression)
	if n == 0 {
		return s
	}

	if IsOperator(s.Expression[n-1]) {
		expr := appendCopy(s.Expression)
		expr[n-1] = op
		s.Expression = expr
	} else {
		s.Expression = appendCopy(s.Expression, op)
	}
	s.Display = op
	return s
}

// Evaluate folds tokens and formats the result.
func (e *Engine) Evaluate(tokens []string) Outcome {
	v, err := Fold(tokens)
	if err != nil {
		return Outcome{Failure: KindOf(err), Err: err}
	}
	return Outcome{
		Value:     v,
		Formatted: FormatResult(v, e.fractionDigits),
	}
}

// CalculateResult evaluates the expression with the pending operand.
//
// On success the result becomes the display and the sole expression token
// (so the next operator chains from it) and an "expr = result" line is added
// to History. On failure only the display changes.
func (e *Engine) CalculateResult(s State) State {
	s, _ = e.calculate(s)
	return s
}

// CalculateOutcome is CalculateResult that also reports the outcome, for
// callers that journal evaluations.
func (e *Engine) CalculateOutcome(s State) (State, Outcome) {
	return e.calculate(s)
}

func (e *Engine) calculate(s State) (State, Outcome) {
	tokens := s.Tokens()
	out := e.Evaluate(tokens)
	if !out.OK() {
		return s.withDisplay(out.Display()), out
	}

	line := strings.Join(tokens, " ") + " = " + out.Formatted
	return State{
		Display:    out.Formatted,
		Expression: []string{out.Formatted},
		History:    appendCopy(s.History, line),
	}, out
}

// Clear returns the initial state. History is discarded too.
func (e *Engine) Clear(State) State {
	return Initial()
}

func isDigit(d string) bool {
	return len(d) == 1 && d[0] >= '0' && d[0] <= '9'
}
