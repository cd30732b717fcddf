package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func registerTools(s *server.MCPServer, deps Deps) {
	// list_sources
	sourcesTool := mcp.NewTool("list_sources",
		mcp.WithDescription("List registered deal sources"),
	)
	s.AddTool(sourcesTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleListSources(ctx, deps)
	})

	// run_scrape
	scrapeTool := mcp.NewTool("run_scrape",
		mcp.WithDescription("Scrape a deal source and reconcile it into the catalog"),
		mcp.WithString("source",
			mcp.Description("Source name (default: configured default source)"),
		),
		mcp.WithBoolean("all",
			mcp.Description("Scrape every registered source"),
		),
		mcp.WithBoolean("dry_run",
			mcp.Description("Fetch and normalize without touching the database"),
		),
	)
	s.AddTool(scrapeTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleRunScrape(ctx, request, deps)
	})

	// recent_deals
	dealsTool := mcp.NewTool("recent_deals",
		mcp.WithDescription("List the most recently ingested deals"),
		mcp.WithNumber("limit",
			mcp.Description("Number of deals (default: 20)"),
		),
	)
	s.AddTool(dealsTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleRecentDeals(ctx, request, deps)
	})
}

func handleListSources(_ context.Context, deps Deps) (*mcp.CallToolResult, error) {
	out := map[string]any{
		"sources": deps.Registry.Sources(),
		"default": deps.DefaultSource,
	}
	data, _ := json.MarshalIndent(out, "", "  ")
	return mcp.NewToolResultText(string(data)), nil
}

func handleRunScrape(ctx context.Context, request mcp.CallToolRequest, deps Deps) (*mcp.CallToolResult, error) {
	name := request.GetString("source", deps.DefaultSource)
	all := request.GetBool("all", false)
	dryRun := request.GetBool("dry_run", false)

	if dryRun {
		names := []string{name}
		if all {
			names = deps.Registry.Sources()
		}
		var results []any
		for _, n := range names {
			res, err := deps.Registry.Run(ctx, n)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("scrape error: %v", err)), nil
			}
			results = append(results, res)
		}
		data, _ := json.MarshalIndent(results, "", "  ")
		return mcp.NewToolResultText(string(data)), nil
	}

	if all {
		reports, sum := deps.Coordinator.RunAll(ctx)
		data, _ := json.MarshalIndent(map[string]any{
			"summary": sum,
			"reports": reports,
		}, "", "  ")
		return mcp.NewToolResultText(string(data)), nil
	}

	report, err := deps.Coordinator.RunOne(ctx, name)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("scrape error: %v", err)), nil
	}
	data, _ := json.MarshalIndent(report, "", "  ")
	return mcp.NewToolResultText(string(data)), nil
}

func handleRecentDeals(ctx context.Context, request mcp.CallToolRequest, deps Deps) (*mcp.CallToolResult, error) {
	limit := request.GetInt("limit", 20)

	deals, err := deps.Deals.RecentDeals(ctx, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("deals error: %v", err)), nil
	}
	total, err := deps.Deals.CountDeals(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("deals error: %v", err)), nil
	}

	data, _ := json.MarshalIndent(map[string]any{
		"total": total,
		"deals": deals,
	}, "", "  ")
	return mcp.NewToolResultText(string(data)), nil
}
