package calc

import (
	"errors"
	"fmt"
)

// Display texts for failed evaluations.
const (
	DisplayError     = "Error"
	DisplayDivByZero = "Div/0"
)

// FailureKind categorizes evaluation failures.
type FailureKind string

const (
	// FailureMalformed means the token list is shorter than 3 or ends on an
	// operator.
	FailureMalformed FailureKind = "MALFORMED_EXPRESSION"

	// FailureDivideByZero means a division step had a divisor of exactly 0.
	FailureDivideByZero FailureKind = "DIVIDE_BY_ZERO"

	// FailureParse means an operand token is not a decimal number.
	FailureParse FailureKind = "NUMERIC_PARSE_FAILURE"

	// FailureUnknownOperator means an operator slot holds something other
	// than + - * /.
	FailureUnknownOperator FailureKind = "UNKNOWN_OPERATOR"

	// FailureNonFinite means the fold overflowed to an infinity.
	FailureNonFinite FailureKind = "NON_FINITE_RESULT"
)

// Display returns the text shown for this failure.
// Division by zero has its own readout; everything else is "Error".
func (k FailureKind) Display() string {
	if k == FailureDivideByZero {
		return DisplayDivByZero
	}
	return DisplayError
}

// EvalError describes why a token list could not be evaluated.
type EvalError struct {
	// Kind identifies the failure category.
	Kind FailureKind

	// Message is a human-readable description.
	Message string

	// Index is the position of the offending token, or -1 when the failure
	// concerns the list as a whole.
	Index int

	// Token is the offending token, if any.
	Token string
}

// Error implements the error interface.
func (e *EvalError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("%s: %s (token %d %q)", e.Kind, e.Message, e.Index, e.Token)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// KindOf returns the failure kind carried by err, or "" if err is not an
// EvalError. Uses errors.As to handle wrapped errors.
func KindOf(err error) FailureKind {
	var ee *EvalError
	if errors.As(err, &ee) {
		return ee.Kind
	}
	return ""
}

// IsDivideByZero returns true if err is a division-by-zero EvalError.
func IsDivideByZero(err error) bool {
	return KindOf(err) == FailureDivideByZero
}

// IsMalformed returns true if err is a malformed-expression EvalError.
func IsMalformed(err error) bool {
	return KindOf(err) == FailureMalformed
}

func newMalformedError(count int) *EvalError {
	return &EvalError{
		Kind:    FailureMalformed,
		Message: fmt.Sprintf("expected an odd number of tokens >= 3, got %d", count),
		Index:   -1,
	}
}

func newTokenError(kind FailureKind, message string, index int, token string) *EvalError {
	return &EvalError{
		Kind:    kind,
		Message: message,
		Index:   index,
		Token:   token,
	}
}
