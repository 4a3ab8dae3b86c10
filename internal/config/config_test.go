package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/abacus/internal/calc"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 15, cfg.Limits.MaxInputLength)
	assert.Equal(t, 2, cfg.Limits.FractionDigits)
	assert.Equal(t, []string{"c", "enter", "x", "×", "÷", "−"}, cfg.Keymap.Aliases())

	button, ok := cfg.Keymap.Button("enter")
	assert.True(t, ok)
	assert.Equal(t, "=", button)
}

func TestLoad_EmptyPathIsDefault(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default().Limits, cfg.Limits)
}

func TestLoad_File(t *testing.T) {
	path := writeFile(t, t.TempDir(), "abacus.cue", `
limits: fraction_digits: 4
keymap: k: "+"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 15, cfg.Limits.MaxInputLength, "unset fields keep their default")
	assert.Equal(t, 4, cfg.Limits.FractionDigits)

	ev, err := cfg.Keymap.Resolve("k")
	require.NoError(t, err)
	assert.Equal(t, calc.Operator("+"), ev)

	// Default aliases survive alongside user aliases
	ev, err = cfg.Keymap.Resolve("x")
	require.NoError(t, err)
	assert.Equal(t, calc.Operator("*"), ev)
}

func TestLoad_FileOverridesDefaultAlias(t *testing.T) {
	path := writeFile(t, t.TempDir(), "abacus.cue", `keymap: x: "/"`)

	cfg, err := Load(path)
	require.NoError(t, err)

	ev, err := cfg.Keymap.Resolve("x")
	require.NoError(t, err)
	assert.Equal(t, calc.Operator("/"), ev)
}

func TestLoad_Directory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "limits.cue", "package abacus\n\nlimits: max_input_length: 8\n")
	writeFile(t, dir, "keys.cue", "package abacus\n\nkeymap: plus: \"+\"\n")

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, 8, cfg.Limits.MaxInputLength)
	_, ok := cfg.Keymap.Button("plus")
	assert.True(t, ok)
}

func TestLoad_OutOfRange(t *testing.T) {
	path := writeFile(t, t.TempDir(), "abacus.cue", `limits: max_input_length: 0`)

	_, err := Load(path)

	require.Error(t, err)
	assert.True(t, IsInvalid(err), "got %v", err)
}

func TestLoad_UnknownButton(t *testing.T) {
	path := writeFile(t, t.TempDir(), "abacus.cue", `keymap: k: "%"`)

	_, err := Load(path)

	require.Error(t, err)
	assert.True(t, IsInvalid(err), "got %v", err)
}

func TestLoad_NotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.cue"))

	var ce *ConfigError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, ErrCodeNotFound, ce.Code)
}

func TestLoad_SyntaxErrorHasPosition(t *testing.T) {
	path := writeFile(t, t.TempDir(), "abacus.cue", "limits: {\n")

	_, err := Load(path)

	var ce *ConfigError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, ErrCodeLoadFailed, ce.Code)
	assert.True(t, ce.Pos.IsValid())
	assert.Contains(t, err.Error(), "abacus.cue")
}

func TestConfigError_Error(t *testing.T) {
	err := &ConfigError{Code: ErrCodeNotFound, Message: "config not found: x.cue"}
	assert.Equal(t, "CONFIG_NOT_FOUND: config not found: x.cue", err.Error())
}

func TestConfig_Engine(t *testing.T) {
	cfg := &Config{Limits: Limits{MaxInputLength: 3, FractionDigits: 1}}

	e := cfg.Engine()

	assert.Equal(t, 3, e.MaxInputLength())
	assert.Equal(t, 1, e.FractionDigits())
}

func TestConfig_Hash(t *testing.T) {
	a, err := Default().Hash()
	require.NoError(t, err)
	b, err := Default().Hash()
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Len(t, a, 64)

	changed := Default()
	changed.Limits.FractionDigits = 3
	c, err := changed.Hash()
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}
