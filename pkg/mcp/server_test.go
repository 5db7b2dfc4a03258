package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewServer(t *testing.T) {
	s := NewServer("sqlward-test", "1.0.0", zap.NewNop())
	require.NotNil(t, s)
}

func TestNewServer_NilLogger(t *testing.T) {
	s := NewServer("sqlward-test", "1.0.0", nil)
	require.NotNil(t, s)
	require.NotNil(t, s.logger)
}

// TestServer_RegisterToolServesOverHTTP verifies that a tool registered
// through RegisterTool is reachable by a tools/call request on the HTTP
// transport.
func TestServer_RegisterToolServesOverHTTP(t *testing.T) {
	var invoked bool

	s := NewServer("sqlward-test", "1.0.0", zap.NewNop())
	tool := mcp.NewTool("ping", mcp.WithDescription("Responds with pong."))
	s.RegisterTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		invoked = true
		return mcp.NewToolResultText("pong"), nil
	})

	httpServer := s.NewStreamableHTTPServer()

	toolCallRequest := map[string]any{
		"jsonrpc": "2.0",
		"method":  "tools/call",
		"params": map[string]any{
			"name": "ping",
		},
		"id": 1,
	}
	body, err := json.Marshal(toolCallRequest)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/mcp", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	httpServer.ServeHTTP(rec, req)

	assert.True(t, invoked, "registered handler should run for tools/call")
}
