package calc

import (
	"math"
	"strconv"
)

// Operator symbols.
const (
	OpAdd      = "+"
	OpSubtract = "-"
	OpMultiply = "*"
	OpDivide   = "/"
)

// IsOperator reports whether token is one of the four operator symbols.
func IsOperator(token string) bool {
	switch token {
	case OpAdd, OpSubtract, OpMultiply, OpDivide:
		return true
	}
	return false
}

// Fold evaluates tokens strictly left to right with no precedence.
//
// tokens must alternate operand, operator, operand, ... and hold an odd count
// of at least 3. The returned error is always an *EvalError.
func Fold(tokens []string) (float64, error) {
	if len(tokens) < 3 || len(tokens)%2 == 0 {
		return 0, newMalformedError(len(tokens))
	}

	result, err := parseOperand(tokens, 0)
	if err != nil {
		return 0, err
	}

	for i := 1; i < len(tokens); i += 2 {
		operand, err := parseOperand(tokens, i+1)
		if err != nil {
			return 0, err
		}

		switch tokens[i] {
		case OpAdd:
			result += operand
		case OpSubtract:
			result -= operand
		case OpMultiply:
			result *= operand
		case OpDivide:
			if operand == 0 {
				return 0, newTokenError(FailureDivideByZero, "division by zero", i+1, tokens[i+1])
			}
			result /= operand
		default:
			return 0, newTokenError(FailureUnknownOperator, "unknown operator", i, tokens[i])
		}
	}

	if math.IsInf(result, 0) || math.IsNaN(result) {
		return 0, newTokenError(FailureNonFinite, "result is not finite", -1, "")
	}

	return result, nil
}

// parseOperand parses tokens[i] as a decimal float.
// Infinities and NaN spelled out as text are rejected along with garbage.
func parseOperand(tokens []string, i int) (float64, error) {
	v, err := strconv.ParseFloat(tokens[i], 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, newTokenError(FailureParse, "operand is not a number", i, tokens[i])
	}
	return v, nil
}

// Outcome is the tagged result of evaluating a token list.
// Exactly one of Formatted and Failure is set.
type Outcome struct {
	Value     float64
	Formatted string
	Failure   FailureKind
	Err       error
}

// OK reports whether evaluation succeeded.
func (o Outcome) OK() bool {
	return o.Failure == ""
}

// Display returns the readout for this outcome.
func (o Outcome) Display() string {
	if o.OK() {
		return o.Formatted
	}
	return o.Failure.Display()
}
