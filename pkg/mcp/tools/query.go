package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/sqlward/sqlward/pkg/gateway"
	"github.com/sqlward/sqlward/pkg/logging"
	"github.com/sqlward/sqlward/pkg/sqlguard"
)

func registerRunQueryTool(s ToolRegistry, deps *Deps) {
	tool := mcp.NewTool(
		"run_query",
		mcp.WithDescription(`Execute a read-only SQL statement against a named environment profile.
Only SELECT, WITH, and plan-inspection statements are accepted; anything that
could mutate data or schema is rejected before execution. Results are capped
by an injected TOP qualifier.`),
		mcp.WithString("profile",
			mcp.Required(),
			mcp.Description("Environment profile name (see list_profiles)")),
		mcp.WithString("sql",
			mcp.Required(),
			mcp.Description("SQL text to execute")),
		mcp.WithNumber("max_rows",
			mcp.Description(fmt.Sprintf("Row cap (default %d, max %d)", deps.DefaultMaxRows, gateway.MaxQueryRows))),
		mcp.WithObject("params",
			mcp.Description("Named parameters referenced as @name in the SQL text")),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	)

	s.RegisterTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		logger := callLogger(deps, "run_query")

		profileName, err := req.RequireString("profile")
		if err != nil {
			return nil, err
		}
		sqlText, err := req.RequireString("sql")
		if err != nil {
			return nil, err
		}

		maxRows := deps.DefaultMaxRows
		if v, ok := getOptionalInt(req, "max_rows"); ok && v > 0 {
			maxRows = v
		}

		params := getOptionalObject(req, "params")
		if findings := sqlguard.CheckParameters(params); len(findings) > 0 {
			dirty := make([]string, 0, len(findings))
			for _, f := range findings {
				dirty = append(dirty, f.ParamName)
			}
			logger.Info("injection pattern in parameter values",
				zap.Strings("params", dirty),
			)
			return NewErrorResultWithDetails(
				string(gateway.KindRejected),
				"injection pattern detected in parameter values",
				map[string]any{"params": dirty, "retryable": false},
			), nil
		}

		pool, errResult := resolvePool(ctx, deps, profileName)
		if errResult != nil {
			return errResult, nil
		}

		start := time.Now()
		result, err := deps.Runner.Run(ctx, pool, sqlText, gateway.QueryOptions{
			MaxRows:        maxRows,
			TimeoutSeconds: deps.TimeoutSeconds,
			Params:         params,
		})
		if err != nil {
			logger.Info("query failed",
				zap.String("profile", profileName),
				zap.String("query", logging.SanitizeQuery(sqlText)),
				zap.String("error", logging.SanitizeError(err)),
			)
			return GatewayErrorResult(err), nil
		}

		logger.Info("query executed",
			zap.String("profile", profileName),
			zap.Int("rows", result.RowCount),
			zap.Duration("elapsed", time.Since(start)),
		)

		jsonResult, err := json.Marshal(result)
		if err != nil {
			return nil, fmt.Errorf("marshal result: %w", err)
		}
		return mcp.NewToolResultText(string(jsonResult)), nil
	})
}

func registerExplainQueryTool(s ToolRegistry, deps *Deps) {
	tool := mcp.NewTool(
		"explain_query",
		mcp.WithDescription(`Return the estimated execution plan for a statement without running it.
The statement goes through the same read-only classification as run_query.`),
		mcp.WithString("profile",
			mcp.Required(),
			mcp.Description("Environment profile name")),
		mcp.WithString("sql",
			mcp.Required(),
			mcp.Description("SQL text to inspect")),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	)

	s.RegisterTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		logger := callLogger(deps, "explain_query")

		profileName, err := req.RequireString("profile")
		if err != nil {
			return nil, err
		}
		sqlText, err := req.RequireString("sql")
		if err != nil {
			return nil, err
		}

		pool, errResult := resolvePool(ctx, deps, profileName)
		if errResult != nil {
			return errResult, nil
		}

		result, err := deps.Runner.Explain(ctx, pool, sqlText, gateway.QueryOptions{
			TimeoutSeconds: deps.TimeoutSeconds,
		})
		if err != nil {
			logger.Info("plan inspection failed",
				zap.String("profile", profileName),
				zap.String("error", logging.SanitizeError(err)),
			)
			return GatewayErrorResult(err), nil
		}

		jsonResult, err := json.Marshal(result)
		if err != nil {
			return nil, fmt.Errorf("marshal result: %w", err)
		}
		return mcp.NewToolResultText(string(jsonResult)), nil
	})
}
