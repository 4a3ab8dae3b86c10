package calc

import (
	"math"
	"strconv"
	"strings"

	"github.com/cockroachdb/apd/v3"
)

// DefaultFractionDigits is how many fractional digits a non-integral result
// is rounded to before trailing zeros are trimmed.
const DefaultFractionDigits = 2

// FormatResult renders a numeric result for the display.
//
// Integral values print without a decimal point. Other values are rounded
// half-up to fractionDigits places on their shortest decimal form, then
// trailing zeros and a trailing "." are trimmed: 2.5 -> "2.5",
// 2.333 -> "2.33", 0.125 -> "0.13", 4.001 -> "4". Negative zero prints as "0".
func FormatResult(v float64, fractionDigits int) string {
	var s string
	if v == math.Trunc(v) {
		s = strconv.FormatFloat(v, 'f', 0, 64)
	} else {
		s = roundHalfUp(v, fractionDigits)
		if strings.Contains(s, ".") {
			s = strings.TrimRight(s, "0")
			s = strings.TrimSuffix(s, ".")
		}
	}
	if s == "-0" {
		return "0"
	}
	return s
}

// roundHalfUp rounds the shortest decimal form of v, so 1.005 is a tie and
// goes up even though its binary value sits just below it.
func roundHalfUp(v float64, fractionDigits int) string {
	shortest := strconv.FormatFloat(v, 'f', -1, 64)
	d, _, err := apd.NewFromString(shortest)
	if err != nil {
		return strconv.FormatFloat(v, 'f', fractionDigits, 64)
	}

	// Non-integral float64 values have at most 16 integer digits.
	ctx := apd.BaseContext.WithPrecision(uint32(20 + fractionDigits))
	ctx.Rounding = apd.RoundHalfUp

	var out apd.Decimal
	if _, err := ctx.Quantize(&out, d, -int32(fractionDigits)); err != nil {
		return strconv.FormatFloat(v, 'f', fractionDigits, 64)
	}
	return out.Text('f')
}
