// Package mcp exposes the ingestion pipeline as MCP tools over stdio or HTTP.
package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/server"

	"github.com/skrooge/skrooge/internal/ingest"
	"github.com/skrooge/skrooge/internal/models"
	"github.com/skrooge/skrooge/internal/source"
)

// DealReader serves the recent_deals tool. The SQLite store satisfies it.
type DealReader interface {
	RecentDeals(ctx context.Context, limit int) ([]models.Deal, error)
	CountDeals(ctx context.Context) (int, error)
}

// Deps carries everything the tool handlers need.
type Deps struct {
	Registry      *source.Registry
	Coordinator   *ingest.Coordinator
	Deals         DealReader
	DefaultSource string
}

func newServer(deps Deps) *server.MCPServer {
	s := server.NewMCPServer(
		"skrooge",
		"1.0.0",
		server.WithToolCapabilities(true),
	)
	registerTools(s, deps)
	return s
}

// Serve starts the MCP stdio server with all tools registered.
func Serve(deps Deps) error {
	return server.ServeStdio(newServer(deps))
}
