package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/sqlward/sqlward/pkg/logging"
)

func registerListSchemasTool(s ToolRegistry, deps *Deps) {
	tool := mcp.NewTool(
		"list_schemas",
		mcp.WithDescription("List user schemas in the profile's database."),
		mcp.WithString("profile",
			mcp.Required(),
			mcp.Description("Environment profile name")),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	)

	s.RegisterTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		profileName, err := req.RequireString("profile")
		if err != nil {
			return nil, err
		}

		pool, errResult := resolvePool(ctx, deps, profileName)
		if errResult != nil {
			return errResult, nil
		}

		schemas, err := deps.Assembler.ListSchemas(ctx, pool)
		if err != nil {
			return GatewayErrorResult(err), nil
		}

		return marshalResult(struct {
			Schemas []string `json:"schemas"`
			Count   int      `json:"count"`
		}{Schemas: schemas, Count: len(schemas)})
	})
}

func registerListTablesTool(s ToolRegistry, deps *Deps) {
	tool := mcp.NewTool(
		"list_tables",
		mcp.WithDescription("List user tables with approximate row counts."),
		mcp.WithString("profile",
			mcp.Required(),
			mcp.Description("Environment profile name")),
		mcp.WithString("schema",
			mcp.Description("Restrict the listing to one schema")),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	)

	s.RegisterTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		profileName, err := req.RequireString("profile")
		if err != nil {
			return nil, err
		}
		schema := getOptionalString(req, "schema")

		pool, errResult := resolvePool(ctx, deps, profileName)
		if errResult != nil {
			return errResult, nil
		}

		tables, err := deps.Assembler.ListTables(ctx, pool, schema)
		if err != nil {
			return GatewayErrorResult(err), nil
		}

		return marshalResult(struct {
			Tables any `json:"tables"`
			Count  int `json:"count"`
		}{Tables: tables, Count: len(tables)})
	})
}

func registerListViewsTool(s ToolRegistry, deps *Deps) {
	tool := mcp.NewTool(
		"list_views",
		mcp.WithDescription("List user views."),
		mcp.WithString("profile",
			mcp.Required(),
			mcp.Description("Environment profile name")),
		mcp.WithString("schema",
			mcp.Description("Restrict the listing to one schema")),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	)

	s.RegisterTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		profileName, err := req.RequireString("profile")
		if err != nil {
			return nil, err
		}
		schema := getOptionalString(req, "schema")

		pool, errResult := resolvePool(ctx, deps, profileName)
		if errResult != nil {
			return errResult, nil
		}

		views, err := deps.Assembler.ListViews(ctx, pool, schema)
		if err != nil {
			return GatewayErrorResult(err), nil
		}

		return marshalResult(struct {
			Views any `json:"views"`
			Count int `json:"count"`
		}{Views: views, Count: len(views)})
	})
}

func registerDescribeTableTool(s ToolRegistry, deps *Deps) {
	tool := mcp.NewTool(
		"describe_table",
		mcp.WithDescription(`Describe one table: columns, primary key, indexes, foreign keys in both
directions, and trigger names. The description is assembled fresh from the
live catalog on every call.`),
		mcp.WithString("profile",
			mcp.Required(),
			mcp.Description("Environment profile name")),
		mcp.WithString("schema",
			mcp.Required(),
			mcp.Description("Schema name, e.g. dbo")),
		mcp.WithString("table",
			mcp.Required(),
			mcp.Description("Table name")),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	)

	s.RegisterTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		logger := callLogger(deps, "describe_table")

		profileName, err := req.RequireString("profile")
		if err != nil {
			return nil, err
		}
		schema, err := req.RequireString("schema")
		if err != nil {
			return nil, err
		}
		table, err := req.RequireString("table")
		if err != nil {
			return nil, err
		}

		pool, errResult := resolvePool(ctx, deps, profileName)
		if errResult != nil {
			return errResult, nil
		}

		desc, err := deps.Assembler.DescribeTable(ctx, pool, schema, table)
		if err != nil {
			logger.Info("describe failed",
				zap.String("profile", profileName),
				zap.String("schema", schema),
				zap.String("table", table),
				zap.String("error", logging.SanitizeError(err)),
			)
			return GatewayErrorResult(err), nil
		}

		return marshalResult(desc)
	})
}

func marshalResult(v any) (*mcp.CallToolResult, error) {
	jsonResult, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return mcp.NewToolResultText(string(jsonResult)), nil
}
