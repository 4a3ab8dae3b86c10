package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/abacus/internal/ir"
)

func executeTrace(t *testing.T, rootOpts *RootOptions, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewTraceCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestTraceMissingDatabaseFlag(t *testing.T) {
	_, err := executeTrace(t, &RootOptions{Format: "text"}, "session-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag")
}

func TestTraceMissingSessionArg(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	journalSession(t, dbPath, "session-1", "1")

	_, err := executeTrace(t, &RootOptions{Format: "text"}, "--db", dbPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg")
}

func TestTraceNonExistentDatabase(t *testing.T) {
	_, err := executeTrace(t, &RootOptions{Format: "text"}, "--db", "/nonexistent/path/test.db", "session-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open database")
}

func TestTraceUnknownSession(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	journalSession(t, dbPath, "session-1", "1")

	_, err := executeTrace(t, &RootOptions{Format: "text"}, "--db", dbPath, "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "session not found")
}

func TestTraceEmptySession(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	journalSession(t, dbPath, "session-1", "")

	out, err := executeTrace(t, &RootOptions{Format: "text"}, "--db", dbPath, "session-1")
	require.NoError(t, err)
	assert.Contains(t, out, "(no presses)")
	assert.Contains(t, out, "Display:      0")
}

func TestTraceWithSession(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	journalSession(t, dbPath, "session-1", "2 + 3 = / 0 =")

	out, err := executeTrace(t, &RootOptions{Format: "text"}, "--db", dbPath, "session-1")
	require.NoError(t, err)

	assert.Contains(t, out, "Trace for Session: session-1")
	assert.Contains(t, out, "[1] digit    2   -> 2")
	assert.Contains(t, out, "[2] operator +   -> +")
	assert.Contains(t, out, "[4] equals   =   -> 5")
	assert.Contains(t, out, "       2 + 3 = 5")
	assert.Contains(t, out, "[7] equals   =   -> Div/0")
	assert.Contains(t, out, "       DIVIDE_BY_ZERO: 5 / 0")
	assert.Contains(t, out, "Presses:      7")
	assert.Contains(t, out, "Evaluations:  2")
	assert.Contains(t, out, "Failures:     1")
}

func TestTraceVerboseShowsSymbol(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	journalSession(t, dbPath, "session-1", "6 x 7")

	out, err := executeTrace(t, &RootOptions{Format: "text", Verbose: true}, "--db", dbPath, "session-1")
	require.NoError(t, err)
	assert.Contains(t, out, "Symbol: *")
	assert.Contains(t, out, "Expression: [6 *]")
}

func TestTraceWithSessionJSON(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	journalSession(t, dbPath, "session-1", "4 * 4 =")

	out, err := executeTrace(t, &RootOptions{Format: "json"}, "--db", dbPath, "session-1")
	require.NoError(t, err)

	var response struct {
		Status string      `json:"status"`
		Data   TraceResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &response))
	assert.Equal(t, "ok", response.Status)
	assert.Equal(t, "session-1", response.Data.SessionID)
	require.Len(t, response.Data.Timeline, 4)

	last := response.Data.Timeline[3]
	assert.Equal(t, "equals", last.Kind)
	require.NotNil(t, last.Evaluation)
	assert.Equal(t, ir.OutcomeOK, last.Evaluation.Outcome)
	assert.Equal(t, []string{"4", "*", "4"}, last.Evaluation.Tokens)
	assert.Equal(t, "4 * 4 = 16", last.Evaluation.HistoryLine)
	assert.Equal(t, "16", response.Data.Stats.FinalDisplay)
	assert.Equal(t, 1, response.Data.Stats.HistoryLen)
}

func TestTraceKindFilter(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	journalSession(t, dbPath, "session-1", "1 + 2 = + 3 =")

	out, err := executeTrace(t, &RootOptions{Format: "json"}, "--db", dbPath, "session-1", "--kind", "equals")
	require.NoError(t, err)

	var response struct {
		Data TraceResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &response))
	require.Len(t, response.Data.Timeline, 2)
	for _, ev := range response.Data.Timeline {
		assert.Equal(t, "equals", ev.Kind)
	}
	assert.Equal(t, 7, response.Data.Stats.Presses, "stats cover the whole session")
}

func TestTraceHelpText(t *testing.T) {
	out, err := executeTrace(t, &RootOptions{Format: "text"}, "--help")
	require.NoError(t, err)

	assert.Contains(t, out, "journaled press")
	assert.Contains(t, out, "--db")
	assert.Contains(t, out, "--kind")
}

func TestBuildTimeline(t *testing.T) {
	presses := []ir.PressRecord{
		{Seq: 1, Key: "1", Kind: "digit", Symbol: "1", After: ir.Snapshot{Display: "1"}},
		{Seq: 2, Key: "enter", Kind: "equals", Symbol: "=", After: ir.Snapshot{Display: "Error"}},
	}
	evals := []ir.EvaluationRecord{
		{Seq: 2, Tokens: []string{"1"}, Outcome: "MALFORMED_EXPRESSION", Display: "Error"},
	}

	timeline := buildTimeline(presses, evals, "")
	require.Len(t, timeline, 2)
	assert.Nil(t, timeline[0].Evaluation)
	require.NotNil(t, timeline[1].Evaluation)
	assert.Equal(t, "MALFORMED_EXPRESSION", timeline[1].Evaluation.Outcome)

	assert.Len(t, buildTimeline(presses, evals, "digit"), 1)
	assert.Empty(t, buildTimeline(presses, evals, "clear"))
}

func TestTruncateID(t *testing.T) {
	assert.Equal(t, "short", truncateID("short"))
	assert.Equal(t, "01939b2e...00000001", truncateID("01939b2e-7c1a-7000-8000-000000000001"))
}
