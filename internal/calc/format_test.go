package calc

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatResult(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{4.0, "4"},
		{2.5, "2.5"},
		{2.0 / 3.0, "0.67"},
		{7.0 / 3.0, "2.33"},
		{-2.5, "-2.5"},
		{0, "0"},
		{math.Copysign(0, -1), "0"},
		{-0.001, "0"},
		{4.001, "4"},
		{100.004, "100"},
		{1e20, "100000000000000000000"},
		{0.1 + 0.2, "0.3"},
		{0.125, "0.13"},
		{0.625, "0.63"},
		{1.005, "1.01"},
		{-0.125, "-0.13"},
		{1.0 / 8.0, "0.13"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatResult(tt.in, DefaultFractionDigits))
		})
	}
}

func TestFormatResult_ZeroFractionDigits(t *testing.T) {
	assert.Equal(t, "20", FormatResult(20, 0))
	assert.Equal(t, "3", FormatResult(2.6, 0))
	assert.Equal(t, "3", FormatResult(2.5, 0))
}

func TestCalculateResult_RoundsTiesUp(t *testing.T) {
	e := New()
	tests := []struct {
		keys    []string
		display string
		history string
	}{
		{[]string{"1", "/", "8", "="}, "0.13", "1 / 8 = 0.13"},
		{[]string{"5", "/", "8", "="}, "0.63", "5 / 8 = 0.63"},
		{[]string{"1", ".", "0", "0", "5", "*", "1", "="}, "1.01", "1.005 * 1 = 1.01"},
	}

	for _, tt := range tests {
		t.Run(tt.history, func(t *testing.T) {
			st := press(t, e, tt.keys...)
			assert.Equal(t, tt.display, st.Display)
			assert.Equal(t, []string{tt.display}, st.Expression)
			assert.Equal(t, []string{tt.history}, st.History)
		})
	}
}
