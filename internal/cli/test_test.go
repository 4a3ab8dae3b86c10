package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const passingScenario = `name: add
description: Two plus three
steps:
  - keys: ["2", "+", "3", "="]
    expect:
      display: "5"
assertions:
  - type: history_contains
    value: "2 + 3 = 5"
`

const failingScenario = `name: wrong
description: Expects precedence the calculator does not apply
steps:
  - keys: ["2", "+", "3", "*", "4", "="]
assertions:
  - type: display
    value: "14"
`

func writeScenario(t *testing.T, dir, file, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, file), []byte(content), 0644))
}

func executeTest(t *testing.T, rootOpts *RootOptions, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewTestCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestTestCommandMissingArgs(t *testing.T) {
	_, err := executeTest(t, &RootOptions{Format: "text"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg")
}

func TestTestCommandNonExistentScenariosDir(t *testing.T) {
	_, err := executeTest(t, &RootOptions{Format: "text"}, "/nonexistent/scenarios")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scenarios directory not found")
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestTestCommandEmptyScenariosDir(t *testing.T) {
	out, err := executeTest(t, &RootOptions{Format: "text"}, t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "No scenarios found")
}

func TestTestCommandEmptyScenariosDirJSON(t *testing.T) {
	out, err := executeTest(t, &RootOptions{Format: "json"}, t.TempDir())
	require.NoError(t, err)

	var response CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &response))
	assert.Equal(t, "ok", response.Status)
}

func TestTestCommandPassing(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "add.yaml", passingScenario)

	out, err := executeTest(t, &RootOptions{Format: "text"}, dir)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ add")
	assert.Contains(t, out, "1 passed, 0 failed, 1 total")
}

func TestTestCommandFailing(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "add.yaml", passingScenario)
	writeScenario(t, dir, "wrong.yaml", failingScenario)

	out, err := executeTest(t, &RootOptions{Format: "text"}, dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ wrong")
	assert.Contains(t, out, "1 passed, 1 failed, 2 total")
}

func TestTestCommandFailingJSON(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "wrong.yaml", failingScenario)

	out, err := executeTest(t, &RootOptions{Format: "json"}, dir)
	require.Error(t, err)

	var response struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
		Error  *CLIError  `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &response))
	assert.Equal(t, "error", response.Status)
	assert.Equal(t, "E_TEST_FAILED", response.Error.Code)
	require.Len(t, response.Data.Scenarios, 1)
	assert.False(t, response.Data.Scenarios[0].Pass)
	assert.NotEmpty(t, response.Data.Scenarios[0].Errors)
}

func TestTestCommandFilter(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "add.yaml", passingScenario)
	writeScenario(t, dir, "wrong.yaml", failingScenario)

	out, err := executeTest(t, &RootOptions{Format: "text"}, dir, "--filter", "a*")
	require.NoError(t, err)
	assert.Contains(t, out, "1 passed, 0 failed, 1 total")
}

func TestTestCommandLoadError(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "typo.yaml", "name: typo\nstepz: []\n")

	out, err := executeTest(t, &RootOptions{Format: "text"}, dir)
	require.Error(t, err)
	assert.Contains(t, out, "✗ typo.yaml")
	assert.Contains(t, out, "failed to load scenario")
}

func TestTestCommandGoldenUpdateThenCompare(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "add.yaml", passingScenario)

	_, err := executeTest(t, &RootOptions{Format: "text"}, dir, "--update")
	require.NoError(t, err)

	golden, err := os.ReadFile(goldenFilePath(dir, "add"))
	require.NoError(t, err)
	assert.Equal(t, "1 2 -> 2 | 2\n2 + -> + | 2 +\n3 3 -> 3 | 2 + 3\n4 = -> 5 | 5\n", string(golden))

	out, err := executeTest(t, &RootOptions{Format: "text"}, dir)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ add")
}

func TestTestCommandGoldenMismatch(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "add.yaml", passingScenario)
	writeScenario(t, filepath.Join(dir, "golden"), "add.golden", "1 2 -> 2 | 2\n")

	out, err := executeTest(t, &RootOptions{Format: "text"}, dir)
	require.Error(t, err)
	assert.Contains(t, out, "does not match golden file")
}

func TestTestCommandHarnessScenarios(t *testing.T) {
	out, err := executeTest(t, &RootOptions{Format: "text"}, filepath.Join("..", "harness", "testdata", "scenarios"))
	require.NoError(t, err, out)
	assert.Contains(t, out, "All scenarios passed")
}

func TestTestHelpText(t *testing.T) {
	out, err := executeTest(t, &RootOptions{Format: "text"}, "--help")
	require.NoError(t, err)

	assert.Contains(t, out, "scenarios")
	assert.Contains(t, out, "--update")
	assert.Contains(t, out, "--filter")
	assert.Contains(t, out, "scenarios-dir")
}

func TestGoldenFilePath(t *testing.T) {
	assert.Equal(t, filepath.Join("scenarios", "golden", "chaining.golden"), goldenFilePath("scenarios", "chaining"))
}
