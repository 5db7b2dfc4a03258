package tools

import (
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/sqlward/sqlward/pkg/gateway"
)

// ErrorResponse is the structured error shape returned inside tool results.
// Errors are returned as tool content rather than protocol errors so the
// calling agent sees the kind tag and detail and can decide what to do.
type ErrorResponse struct {
	Error   bool   `json:"error"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// NewErrorResult creates a tool result containing a structured error.
func NewErrorResult(code, message string) *mcp.CallToolResult {
	return NewErrorResultWithDetails(code, message, nil)
}

// NewErrorResultWithDetails creates an error result with additional context.
func NewErrorResultWithDetails(code, message string, details any) *mcp.CallToolResult {
	resp := ErrorResponse{
		Error:   true,
		Code:    code,
		Message: message,
		Details: details,
	}
	jsonBytes, _ := json.Marshal(resp)
	result := mcp.NewToolResultText(string(jsonBytes))
	result.IsError = true
	return result
}

// GatewayErrorResult maps a typed gateway error onto a structured error
// result. The gateway's kind becomes the stable code; unknown errors get a
// generic code rather than being swallowed.
func GatewayErrorResult(err error) *mcp.CallToolResult {
	kind := gateway.KindOf(err)
	if kind == "" {
		return NewErrorResult("internal_error", err.Error())
	}

	result := NewErrorResult(string(kind), err.Error())
	switch kind {
	case gateway.KindRejected:
		// Make the no-retry contract explicit for the agent.
		return NewErrorResultWithDetails(string(kind), err.Error(), map[string]any{
			"retryable": false,
			"hint":      "only read statements are accepted; do not rewrite and resubmit mutating statements",
		})
	case gateway.KindTimeout:
		return NewErrorResultWithDetails(string(kind), err.Error(), map[string]any{
			"retryable": false,
			"hint":      "the query exceeded its deadline; narrow the query instead of retrying it as-is",
		})
	}
	return result
}
