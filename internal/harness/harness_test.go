package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func linesPtr(xs ...string) *[]string {
	if xs == nil {
		xs = []string{}
	}
	return &xs
}

func TestRun_MinimalScenario(t *testing.T) {
	scenario := &Scenario{
		Name:        "minimal",
		Description: "Minimal test scenario",
		Steps:       []Step{{Press: "7"}},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.True(t, result.Pass)
	assert.Empty(t, result.Errors)
	require.Len(t, result.Transcript, 1)
	assert.Equal(t, TranscriptLine{Step: 1, Seq: 1, Key: "7", Display: "7", Tokens: "7"}, result.Transcript[0])
	assert.Equal(t, "7", result.Final.Display)
}

func TestRun_ExpectMismatch(t *testing.T) {
	scenario := &Scenario{
		Name:        "mismatch",
		Description: "Expect clause that does not hold",
		Steps: []Step{
			{
				Keys: []string{"2", "+", "2", "="},
				Expect: &ExpectClause{
					Display: strPtr("5"),
					History: linesPtr("2 + 2 = 5"),
				},
			},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 2)
	assert.Contains(t, result.Errors[0], "steps[0].expect.display")
	assert.Contains(t, result.Errors[0], `Expected: "5"`)
	assert.Contains(t, result.Errors[0], `Actual: "4"`)
	assert.Contains(t, result.Errors[1], "steps[0].expect.history")
}

func TestRun_ExpectChecksOnlySetFields(t *testing.T) {
	scenario := &Scenario{
		Name:        "partial",
		Description: "Only display is checked",
		Steps: []Step{
			{Keys: []string{"1", "+"}, Expect: &ExpectClause{Display: strPtr("+")}},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRun_EmptyExpressionExpect(t *testing.T) {
	scenario := &Scenario{
		Name:        "empty_expression",
		Description: "An empty list means nothing committed",
		Steps: []Step{
			{Press: "4", Expect: &ExpectClause{Expression: linesPtr(), CurrentInput: strPtr("4")}},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRun_UnknownKeyFailsButContinues(t *testing.T) {
	scenario := &Scenario{
		Name:        "typo",
		Description: "A key with no button",
		Steps: []Step{
			{Keys: []string{"1", "?", "2"}},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "UNKNOWN_KEY")
	assert.Contains(t, result.Errors[0], "press 2")
	require.Len(t, result.Transcript, 2)
	assert.Equal(t, int64(3), result.Transcript[1].Step, "rejected keys still take a step number")
	assert.Equal(t, int64(2), result.Transcript[1].Seq)
	assert.Equal(t, "12", result.Final.Display)
}

func TestRun_Assertions(t *testing.T) {
	scenario := &Scenario{
		Name:        "assertions",
		Description: "Failing and passing assertions",
		Steps:       []Step{{Keys: []string{"3", "*", "3", "="}}},
		Assertions: []Assertion{
			{Type: AssertDisplay, Value: "9"},
			{Type: AssertHistoryCount, Count: 2},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "assertions[1]")
	assert.Contains(t, result.Errors[0], "history_count")
}

func TestRun_SessionIDIsFixed(t *testing.T) {
	scenario := &Scenario{
		Name:        "fixed_id",
		Description: "Transcript does not depend on the session ID",
		SessionID:   "scenario-0001",
		Steps:       []Step{{Keys: []string{"1", "+", "1", "="}}},
	}

	first, err := Run(scenario)
	require.NoError(t, err)
	second, err := Run(scenario)
	require.NoError(t, err)

	assert.Equal(t, first.TranscriptText(), second.TranscriptText())
	assert.True(t, first.Final.Equal(second.Final))
}

func TestRun_Config(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "short.cue")
	require.NoError(t, os.WriteFile(cfgPath, []byte("limits: max_input_length: 3\n"), 0644))

	scenario := &Scenario{
		Name:        "short",
		Description: "Operands capped at three characters",
		Config:      cfgPath,
		Steps: []Step{
			{Keys: []string{"1", "2", "3", "4"}, Expect: &ExpectClause{Display: strPtr("123")}},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRun_InvalidConfig(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "bad.cue")
	require.NoError(t, os.WriteFile(cfgPath, []byte("limits: fraction_digits: -1\n"), 0644))

	scenario := &Scenario{
		Name:        "bad",
		Description: "Invalid configuration",
		Config:      cfgPath,
		Steps:       []Step{{Press: "1"}},
	}

	_, err := Run(scenario)
	assert.Error(t, err)
}
