package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/abacus/internal/calc"
)

// AssertionError is returned when an assertion fails.
// It includes the transcript so far to help debug the failure.
type AssertionError struct {
	Type       string           // Assertion type for categorization
	Expected   string           // Human-readable expected outcome
	Actual     string           // Human-readable actual outcome
	Transcript []TranscriptLine // Presses leading up to the failure
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Transcript) > 0 {
		fmt.Fprintf(&buf, "\nTranscript:\n")
		for _, line := range e.Transcript {
			fmt.Fprintf(&buf, "  %s\n", line)
		}
	}

	return buf.String()
}

// checkExpect compares st against an expect clause.
// Returns one error per mismatching field.
func checkExpect(step int, st calc.State, expect *ExpectClause, transcript []TranscriptLine) []error {
	if expect == nil {
		return nil
	}

	var errs []error
	mismatch := func(field, want, got string) {
		errs = append(errs, &AssertionError{
			Type:       fmt.Sprintf("steps[%d].expect.%s", step, field),
			Expected:   want,
			Actual:     got,
			Transcript: transcript,
		})
	}

	if expect.Display != nil && *expect.Display != st.Display {
		mismatch("display", quote(*expect.Display), quote(st.Display))
	}
	if expect.CurrentInput != nil && *expect.CurrentInput != st.CurrentInput {
		mismatch("current_input", quote(*expect.CurrentInput), quote(st.CurrentInput))
	}
	if expect.Expression != nil && !equalLines(*expect.Expression, st.Expression) {
		mismatch("expression", formatList(*expect.Expression), formatList(st.Expression))
	}
	if expect.History != nil && !equalLines(*expect.History, st.History) {
		mismatch("history", formatList(*expect.History), formatList(st.History))
	}

	return errs
}

// assertDisplay checks the final display text.
func assertDisplay(st calc.State, a Assertion) error {
	if st.Display == a.Value {
		return nil
	}
	return &AssertionError{
		Type:     AssertDisplay,
		Expected: quote(a.Value),
		Actual:   quote(st.Display),
	}
}

// assertExpression checks the committed expression tokens.
func assertExpression(st calc.State, a Assertion) error {
	if equalLines(a.Tokens, st.Expression) {
		return nil
	}
	return &AssertionError{
		Type:     AssertExpression,
		Expected: formatList(a.Tokens),
		Actual:   formatList(st.Expression),
	}
}

// assertHistoryContains checks that a history line equals a.Value.
func assertHistoryContains(st calc.State, a Assertion) error {
	for _, line := range st.History {
		if line == a.Value {
			return nil
		}
	}
	return &AssertionError{
		Type:     AssertHistoryContains,
		Expected: fmt.Sprintf("history line %q", a.Value),
		Actual:   "not found in " + formatList(st.History),
	}
}

// assertHistoryCount checks the number of history lines.
func assertHistoryCount(st calc.State, a Assertion) error {
	if len(st.History) == a.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertHistoryCount,
		Expected: fmt.Sprintf("%d lines", a.Count),
		Actual:   fmt.Sprintf("%d lines", len(st.History)),
	}
}

// assertHistoryOrder checks that lines appear in history in the given
// order. Lines don't need to be consecutive.
func assertHistoryOrder(st calc.State, a Assertion) error {
	next := 0
	for _, line := range st.History {
		if next < len(a.Lines) && line == a.Lines[next] {
			next++
		}
	}
	if next == len(a.Lines) {
		return nil
	}
	return &AssertionError{
		Type:     AssertHistoryOrder,
		Expected: "lines in order: " + formatList(a.Lines),
		Actual:   fmt.Sprintf("missing %q in %s", a.Lines[next], formatList(st.History)),
	}
}

// EvaluateAssertions evaluates all assertions against the final state.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errs []string

	for i, a := range assertions {
		var err error
		switch a.Type {
		case AssertDisplay:
			err = assertDisplay(result.Final, a)
		case AssertExpression:
			err = assertExpression(result.Final, a)
		case AssertHistoryContains:
			err = assertHistoryContains(result.Final, a)
		case AssertHistoryCount:
			err = assertHistoryCount(result.Final, a)
		case AssertHistoryOrder:
			err = assertHistoryOrder(result.Final, a)
		default:
			err = fmt.Errorf("unknown assertion type %q", a.Type)
		}

		if err != nil {
			errs = append(errs, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}

	return errs
}

func equalLines(want, got []string) bool {
	if len(want) != len(got) {
		return false
	}
	for i := range want {
		if want[i] != got[i] {
			return false
		}
	}
	return true
}

func formatList(xs []string) string {
	quoted := make([]string, len(xs))
	for i, x := range xs {
		quoted[i] = quote(x)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

func quote(s string) string {
	return fmt.Sprintf("%q", s)
}
