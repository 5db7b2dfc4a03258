package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/sqlward/sqlward/pkg/gateway"
	"github.com/sqlward/sqlward/pkg/render"
)

func registerTableMarkdownTool(s ToolRegistry, deps *Deps) {
	tool := mcp.NewTool(
		"table_markdown",
		mcp.WithDescription(`Render a table's description as a Markdown document suitable for pasting
into docs or a data dictionary.`),
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
		desc, errResult := describeForRender(ctx, deps, req)
		if errResult != nil {
			return errResult, nil
		}
		return mcp.NewToolResultText(render.TableMarkdown(desc)), nil
	})
}

func registerGenerateModelTool(s ToolRegistry, deps *Deps) {
	tool := mcp.NewTool(
		"generate_model",
		mcp.WithDescription(`Generate a Go struct for a table, with db and json tags and nullable
columns mapped to pointer types.`),
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
		desc, errResult := describeForRender(ctx, deps, req)
		if errResult != nil {
			return errResult, nil
		}
		return mcp.NewToolResultText(render.GoModel(desc)), nil
	})
}

func describeForRender(ctx context.Context, deps *Deps, req mcp.CallToolRequest) (*gateway.TableDescription, *mcp.CallToolResult) {
	profileName, err := req.RequireString("profile")
	if err != nil {
		return nil, NewErrorResult("invalid_arguments", err.Error())
	}
	schema, err := req.RequireString("schema")
	if err != nil {
		return nil, NewErrorResult("invalid_arguments", err.Error())
	}
	table, err := req.RequireString("table")
	if err != nil {
		return nil, NewErrorResult("invalid_arguments", err.Error())
	}

	pool, errResult := resolvePool(ctx, deps, profileName)
	if errResult != nil {
		return nil, errResult
	}

	desc, err := deps.Assembler.DescribeTable(ctx, pool, schema, table)
	if err != nil {
		return nil, GatewayErrorResult(err)
	}
	return desc, nil
}
