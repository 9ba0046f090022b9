package api

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/gw2dex/gw2dex/internal/storage"
)

// MCPDeps holds dependencies for the MCP server. The catalog maps are shared
// with the HTTP handler; the server never mutates them.
type MCPDeps struct {
	App   *app
	Store *storage.Store // optional; backs the runs resource
}

// NewMCPDeps wires MCP dependencies from the same AppDeps the HTTP handler
// uses, sharing the query cache between the two surfaces.
func NewMCPDeps(deps AppDeps) MCPDeps {
	names := make(map[int]string, len(deps.Items))
	for id, it := range deps.Items {
		names[id] = it.Name
	}
	cache, _ := newQueryCache()
	return MCPDeps{
		App:   &app{deps: deps, names: names, cache: cache},
		Store: deps.Store,
	}
}

// NewMCPServer creates an MCP server exposing the catalog as tools and
// resources.
func NewMCPServer(deps MCPDeps) *server.MCPServer {
	s := server.NewMCPServer(
		"gw2dex",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithInstructions("gw2dex — local Guild Wars 2 item catalog: substring search and condensed item lookups."),
		server.WithRecovery(),
	)

	s.AddTool(
		mcp.NewTool("item_search",
			mcp.WithDescription("Case-insensitive substring search over item names. Returns matching items with id, name, rarity, type and subtype."),
			mcp.WithString("query", mcp.Description("Substring to search for"), mcp.Required()),
			mcp.WithNumber("limit", mcp.Description("Maximum number of results (default 20)")),
		),
		mcpItemSearch(deps),
	)

	s.AddTool(
		mcp.NewTool("item_get",
			mcp.WithDescription("Look up a single item by its catalog id."),
			mcp.WithNumber("id", mcp.Description("Item id"), mcp.Required()),
		),
		mcpItemGet(deps),
	)

	s.AddResource(
		mcp.NewResource(
			"catalog://stats",
			"Catalog Stats",
			mcp.WithResourceDescription("Catalog size and recent update runs"),
			mcp.WithMIMEType("application/json"),
		),
		mcpResourceStats(deps),
	)

	return s
}

func mcpItemSearch(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, err := req.RequireString("query")
		if err != nil {
			return mcpError("query is required"), nil
		}

		limit := req.GetInt("limit", 20)
		if limit <= 0 {
			limit = 20
		}
		if limit > maxSearchHits {
			limit = maxSearchHits
		}

		ids := deps.App.query(query)
		if len(ids) > limit {
			ids = ids[:limit]
		}

		hits := make([]SearchHit, len(ids))
		for i, id := range ids {
			hits[i] = SearchHit{ID: id, Item: deps.App.deps.Items[id]}
		}

		b, err := json.Marshal(hits)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal results: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpItemGet(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := req.RequireInt("id")
		if err != nil {
			return mcpError("id is required"), nil
		}

		item, ok := deps.App.deps.Items[id]
		if !ok {
			return mcpError(fmt.Sprintf("item %d not in catalog", id)), nil
		}

		b, err := json.Marshal(SearchHit{ID: id, Item: item})
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal item: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpResourceStats(deps MCPDeps) server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		type runSummary struct {
			ID        string `json:"id"`
			Lang      string `json:"lang"`
			StartedAt string `json:"started_at"`
			Status    string `json:"status"`
			Fetched   int    `json:"fetched"`
			CacheSize int    `json:"cache_size"`
		}

		stats := struct {
			Items int          `json:"items"`
			Runs  []runSummary `json:"runs"`
		}{
			Items: len(deps.App.deps.Items),
			Runs:  []runSummary{},
		}

		if deps.Store != nil {
			runs, err := deps.Store.RecentRuns(10)
			if err != nil {
				return nil, fmt.Errorf("failed to list runs: %w", err)
			}
			for _, run := range runs {
				stats.Runs = append(stats.Runs, runSummary{
					ID:        run.ID,
					Lang:      run.Lang,
					StartedAt: run.StartedAt.Format(time.RFC3339),
					Status:    run.Status,
					Fetched:   run.Fetched,
					CacheSize: run.CacheSize,
				})
			}
		}

		b, err := json.Marshal(stats)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal stats: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     string(b),
			},
		}, nil
	}
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
