package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

type profileSummary struct {
	Name     string `json:"name"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Database string `json:"database"`
	AuthMode string `json:"auth_mode"`
}

func registerListProfilesTool(s ToolRegistry, deps *Deps) {
	tool := mcp.NewTool(
		"list_profiles",
		mcp.WithDescription(`List the configured environment profiles. Every other tool takes one of
these names as its profile argument. Credentials are never included.`),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	)

	s.RegisterTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		summaries := make([]profileSummary, 0, len(deps.Profiles))
		for _, name := range profileNames(deps.Profiles) {
			p := deps.Profiles[name]
			summaries = append(summaries, profileSummary{
				Name:     p.Name,
				Host:     p.Host,
				Port:     p.Port,
				Database: p.Database,
				AuthMode: p.AuthMode,
			})
		}

		stats := deps.Manager.GetStats()
		return marshalResult(struct {
			Profiles    []profileSummary `json:"profiles"`
			ActivePools int              `json:"active_pools"`
		}{Profiles: summaries, ActivePools: stats.TotalPools})
	})
}
