package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/abacus/internal/calc"
)

func executeRepl(t *testing.T, rootOpts *RootOptions, input string, args ...string) string {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewReplCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(input))
	cmd.SetArgs(args)
	require.NoError(t, cmd.Execute())
	return buf.String()
}

func TestReplPrintsDisplayPerPress(t *testing.T) {
	out := executeRepl(t, &RootOptions{Format: "text"}, "2 + 3\n=\n")

	assert.Equal(t, "2\n+\n3\n5\n", out)
}

func TestReplSkipsUnknownKeys(t *testing.T) {
	out := executeRepl(t, &RootOptions{Format: "text"}, "8 ? / 2 =\n")

	assert.Equal(t, "8\n/\n2\n4\n", out)
}

func TestReplQuitStopsReading(t *testing.T) {
	out := executeRepl(t, &RootOptions{Format: "text"}, "1 quit 2\n3\n")

	assert.Equal(t, "1\n", out)
}

func TestReplHelp(t *testing.T) {
	out := executeRepl(t, &RootOptions{Format: "text"}, "help\n")

	assert.Equal(t, keypadHelp(), out)
	assert.Contains(t, out, "7 8 9 /")
	assert.Contains(t, out, "0 . + =")
}

func TestReplJSON(t *testing.T) {
	out := executeRepl(t, &RootOptions{Format: "json"}, "6 x 7 enter\n")

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)

	var last calc.Render
	require.NoError(t, json.Unmarshal([]byte(lines[3]), &last))
	assert.Equal(t, "42", last.Display)
	assert.Equal(t, "6 * 7 = 42", last.History)
}

func TestReplEmptyInput(t *testing.T) {
	out := executeRepl(t, &RootOptions{Format: "text"}, "")
	assert.Empty(t, out)
}

func TestReplRejectsArgs(t *testing.T) {
	cmd := NewReplCommand(&RootOptions{Format: "text"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"1"})
	require.Error(t, cmd.Execute())
}
