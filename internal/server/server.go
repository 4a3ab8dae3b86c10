// Package server exposes a calculator session as MCP tools over stdio.
//
// The server is one more collaborator of a session: it presses keys and
// reports the render strings, the same way the REPL does.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/roach88/abacus/internal/calc"
	"github.com/roach88/abacus/internal/ir"
	"github.com/roach88/abacus/internal/session"
)

// Name is the MCP server name.
const Name = "abacus"

// Tool names
const (
	ToolPress   = "calc.press"
	ToolState   = "calc.state"
	ToolClear   = "calc.clear"
	ToolHistory = "calc.history"
)

// View is the JSON body every state-returning tool replies with.
type View struct {
	History    string     `json:"history"`
	Expression string     `json:"expression"`
	Display    string     `json:"display"`
	Keypad     [][]string `json:"keypad,omitempty"`
}

// Server serves one calculator session over MCP.
type Server struct {
	mcpServer *server.MCPServer
	session   *session.Session
	logger    *slog.Logger
}

// New creates a server for sess and registers its tools.
func New(sess *session.Session, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		mcpServer: server.NewMCPServer(Name, ir.EngineVersion),
		session:   sess,
		logger:    logger,
	}
	s.registerTools()
	return s
}

// MCPServer returns the underlying MCP server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio serves MCP requests on stdin/stdout until stdin closes.
func (s *Server) ServeStdio() error {
	s.logger.Info("serving MCP over stdio", "session", s.session.ID())
	if err := server.ServeStdio(s.mcpServer); err != nil {
		return fmt.Errorf("failed to serve MCP server: %w", err)
	}
	return nil
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool(ToolPress,
		mcp.WithDescription("Press calculator keys in order and return the new display"),
		mcp.WithString("keys", mcp.Required(), mcp.Description(`Space separated keys, e.g. "2 + 3 ="`)),
	), s.handlePress)

	s.mcpServer.AddTool(mcp.NewTool(ToolState,
		mcp.WithDescription("Return the current display, expression, history and keypad"),
	), s.handleState)

	s.mcpServer.AddTool(mcp.NewTool(ToolClear,
		mcp.WithDescription("Press C: reset the display, expression and history"),
	), s.handleClear)

	s.mcpServer.AddTool(mcp.NewTool(ToolHistory,
		mcp.WithDescription("Return the completed calculations, one per line"),
	), s.handleHistory)
}

func (s *Server) handlePress(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	keys := strings.Fields(mcp.ParseString(req, "keys", ""))
	if len(keys) == 0 {
		return mcp.NewToolResultError("keys parameter is required"), nil
	}

	for _, key := range keys {
		if _, err := s.session.Press(ctx, key); err != nil {
			s.logger.Debug("tool press rejected", "key", key, "error", err)
			return mcp.NewToolResultError(fmt.Sprintf("press %q: %v", key, err)), nil
		}
	}
	return viewResult(s.session.State(), false)
}

func (s *Server) handleState(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return viewResult(s.session.State(), true)
}

func (s *Server) handleClear(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	st, err := s.session.Clear(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("clear: %v", err)), nil
	}
	return viewResult(st, false)
}

func (s *Server) handleHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(s.session.State().Render().History), nil
}

func viewResult(st calc.State, withKeypad bool) (*mcp.CallToolResult, error) {
	r := st.Render()
	v := View{History: r.History, Expression: r.Expression, Display: r.Display}
	if withKeypad {
		v.Keypad = calc.Keypad
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal view: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}
