package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/abacus/internal/calc"
	"github.com/roach88/abacus/internal/config"
	"github.com/roach88/abacus/internal/session"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sess, err := session.New(context.Background(),
		session.WithIDGenerator(session.NewFixedGenerator("mcp-session")),
		session.WithKeyResolver(config.Default().Keymap),
		session.WithLogger(logger),
	)
	require.NoError(t, err)
	return New(sess, logger)
}

func callTool(args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, result)
	require.Len(t, result.Content, 1)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "content is %T", result.Content[0])
	return text.Text
}

func decodeView(t *testing.T, result *mcp.CallToolResult) View {
	t.Helper()
	var v View
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &v))
	return v
}

func TestPress(t *testing.T) {
	s := newTestServer(t)

	result, err := s.handlePress(context.Background(), callTool(map[string]any{"keys": "2 + 3 ="}))

	require.NoError(t, err)
	assert.False(t, result.IsError)
	v := decodeView(t, result)
	assert.Equal(t, "5", v.Display)
	assert.Equal(t, "2 + 3 = 5", v.History)
	assert.Equal(t, "5 ", v.Expression)
	assert.Nil(t, v.Keypad)
}

func TestPress_Aliases(t *testing.T) {
	s := newTestServer(t)

	result, err := s.handlePress(context.Background(), callTool(map[string]any{"keys": "6 x 7 enter"}))

	require.NoError(t, err)
	assert.Equal(t, "42", decodeView(t, result).Display)
}

func TestPress_UnknownKeyStopsAtFirstRejection(t *testing.T) {
	s := newTestServer(t)

	result, err := s.handlePress(context.Background(), callTool(map[string]any{"keys": "1 ? 2"}))

	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), `press "?"`)
	assert.Equal(t, "1", s.session.State().Display)
}

func TestPress_MissingKeys(t *testing.T) {
	s := newTestServer(t)

	result, err := s.handlePress(context.Background(), callTool(map[string]any{}))

	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestState_IncludesKeypad(t *testing.T) {
	s := newTestServer(t)

	result, err := s.handleState(context.Background(), callTool(nil))

	require.NoError(t, err)
	v := decodeView(t, result)
	assert.Equal(t, "0", v.Display)
	assert.Equal(t, " ", v.Expression)
	assert.Equal(t, calc.Keypad, v.Keypad)
}

func TestClear(t *testing.T) {
	s := newTestServer(t)
	_, err := s.handlePress(context.Background(), callTool(map[string]any{"keys": "9 * 9 ="}))
	require.NoError(t, err)

	result, err := s.handleClear(context.Background(), callTool(nil))

	require.NoError(t, err)
	v := decodeView(t, result)
	assert.Equal(t, "0", v.Display)
	assert.Empty(t, v.History)
	assert.True(t, s.session.State().Equal(calc.Initial()))
}

func TestHistory(t *testing.T) {
	s := newTestServer(t)
	_, err := s.handlePress(context.Background(), callTool(map[string]any{"keys": "1 + 1 = + 1 ="}))
	require.NoError(t, err)

	result, err := s.handleHistory(context.Background(), callTool(nil))

	require.NoError(t, err)
	assert.Equal(t, "1 + 1 = 2\n2 + 1 = 3", resultText(t, result))
}

func TestNew_RegistersTools(t *testing.T) {
	s := newTestServer(t)
	assert.NotNil(t, s.MCPServer())
}
