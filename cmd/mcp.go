package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	mcpserver "github.com/skrooge/skrooge/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP stdio server",
	RunE:  runMCP,
}

var mcpHTTPCmd = &cobra.Command{
	Use:   "mcp-http",
	Short: "Start MCP HTTP server",
	Long:  "Start the MCP server over HTTP for remote access.",
	RunE:  runMCPHTTP,
}

func init() {
	mcpHTTPCmd.Flags().String("port", "", "HTTP port (default from $PORT or 8080)")
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(mcpHTTPCmd)
}

func buildMCPDeps() (mcpserver.Deps, func(), error) {
	logger := buildLogger()
	coordinator, st, err := buildCoordinator(logger)
	if err != nil {
		return mcpserver.Deps{}, nil, err
	}
	deps := mcpserver.Deps{
		Registry:      buildRegistry(logger),
		Coordinator:   coordinator,
		Deals:         st,
		DefaultSource: cfg.DefaultSource,
	}
	return deps, func() { st.Close() }, nil
}

func runMCP(cmd *cobra.Command, args []string) error {
	deps, cleanup, err := buildMCPDeps()
	if err != nil {
		return err
	}
	defer cleanup()

	fmt.Fprintln(cmd.ErrOrStderr(), "Starting Skrooge MCP server on stdio...")

	if err := mcpserver.Serve(deps); err != nil {
		log.Fatalf("MCP server error: %v", err)
	}
	return nil
}

func runMCPHTTP(cmd *cobra.Command, args []string) error {
	deps, cleanup, err := buildMCPDeps()
	if err != nil {
		return err
	}
	defer cleanup()

	port := cfg.HTTPPort
	if p, _ := cmd.Flags().GetString("port"); p != "" {
		port = p
	}

	return mcpserver.ServeHTTP(fmt.Sprintf(":%s", port), cfg.APIKey, deps)
}
