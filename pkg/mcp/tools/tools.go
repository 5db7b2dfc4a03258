// Package tools provides the MCP tool surface over the read-only gateway.
// Handlers resolve a profile, call into the gateway, and serialize either a
// result structure or a typed error; the gateway itself never formats output.
package tools

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/sqlward/sqlward/pkg/gateway"
)

// Deps holds everything the tool handlers need.
type Deps struct {
	Manager   *gateway.PoolManager
	Profiles  map[string]*gateway.Profile
	Runner    *gateway.QueryRunner
	Assembler *gateway.SchemaAssembler

	// DefaultMaxRows and TimeoutSeconds bound every query tool call.
	DefaultMaxRows int
	TimeoutSeconds int

	Logger *zap.Logger
}

// ToolRegistry is the part of the MCP server surface the tools register on.
type ToolRegistry interface {
	RegisterTool(tool mcp.Tool, handler server.ToolHandlerFunc)
}

// RegisterAll registers every sqlward tool with the MCP server.
func RegisterAll(s ToolRegistry, deps *Deps) {
	registerListProfilesTool(s, deps)
	registerRunQueryTool(s, deps)
	registerExplainQueryTool(s, deps)
	registerListSchemasTool(s, deps)
	registerListTablesTool(s, deps)
	registerListViewsTool(s, deps)
	registerDescribeTableTool(s, deps)
	registerTableMarkdownTool(s, deps)
	registerGenerateModelTool(s, deps)
}

// resolvePool resolves the named profile and acquires its pool. The second
// return value is a ready-to-return error result when resolution fails.
func resolvePool(ctx context.Context, deps *Deps, profileName string) (*gateway.Pool, *mcp.CallToolResult) {
	profile, ok := deps.Profiles[profileName]
	if !ok {
		return nil, NewErrorResultWithDetails(
			"unknown_profile",
			"no profile named "+profileName,
			map[string]any{"known_profiles": profileNames(deps.Profiles)},
		)
	}

	pool, err := deps.Manager.Acquire(ctx, profile)
	if err != nil {
		return nil, GatewayErrorResult(err)
	}
	return pool, nil
}

func profileNames(profiles map[string]*gateway.Profile) []string {
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// callLogger attaches a correlation ID plus the tool name to the logger so
// concurrent invocations stay distinguishable.
func callLogger(deps *Deps, tool string) *zap.Logger {
	return deps.Logger.With(
		zap.String("tool", tool),
		zap.String("call_id", uuid.NewString()),
	)
}

// getOptionalInt reads an optional numeric argument (JSON numbers arrive as
// float64).
func getOptionalInt(req mcp.CallToolRequest, key string) (int, bool) {
	args, ok := req.Params.Arguments.(map[string]any)
	if !ok {
		return 0, false
	}
	val, ok := args[key].(float64)
	return int(val), ok
}

// getOptionalObject reads an optional object argument.
func getOptionalObject(req mcp.CallToolRequest, key string) map[string]any {
	args, ok := req.Params.Arguments.(map[string]any)
	if !ok {
		return nil
	}
	val, _ := args[key].(map[string]any)
	return val
}

// getOptionalString reads an optional string argument.
func getOptionalString(req mcp.CallToolRequest, key string) string {
	args, ok := req.Params.Arguments.(map[string]any)
	if !ok {
		return ""
	}
	val, _ := args[key].(string)
	return val
}
