package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/abacus/internal/calc"
)

// TranscriptLine records one press and the state it produced.
type TranscriptLine struct {
	Step    int64  `json:"step"`
	Seq     int64  `json:"seq"`
	Key     string `json:"key"`
	Display string `json:"display"`
	Tokens  string `json:"tokens"`
}

// String formats the line as it appears in golden files.
// The token column is omitted when nothing has been entered.
func (l TranscriptLine) String() string {
	if l.Tokens == "" {
		return fmt.Sprintf("%d %s -> %s", l.Seq, l.Key, l.Display)
	}
	return fmt.Sprintf("%d %s -> %s | %s", l.Seq, l.Key, l.Display, l.Tokens)
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true if every expect clause and assertion held.
	Pass bool `json:"pass"`

	// Transcript contains one line per press, in order.
	Transcript []TranscriptLine `json:"transcript"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Final is the session state after the last step.
	Final calc.State `json:"final"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:       true,
		Transcript: []TranscriptLine{},
		Errors:     []string{},
		Final:      calc.Initial(),
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddPress appends a transcript line for a press.
func (r *Result) AddPress(step, seq int64, key string, st calc.State) {
	r.Transcript = append(r.Transcript, TranscriptLine{
		Step:    step,
		Seq:     seq,
		Key:     key,
		Display: st.Display,
		Tokens:  strings.Join(st.Tokens(), " "),
	})
}

// TranscriptText renders the transcript, one line per press, each ending in
// a newline.
func (r *Result) TranscriptText() []byte {
	var buf strings.Builder
	for _, line := range r.Transcript {
		buf.WriteString(line.String())
		buf.WriteByte('\n')
	}
	return []byte(buf.String())
}
