package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/skrooge/skrooge/internal/api"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long:  "Start the HTTP API exposing scrape triggers and catalog reads.",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("port", "", "HTTP port (default from $PORT or 8080)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	log := buildLogger()

	coordinator, st, err := buildCoordinator(log)
	if err != nil {
		return err
	}
	defer st.Close()

	port := cfg.HTTPPort
	if p, _ := cmd.Flags().GetString("port"); p != "" {
		port = p
	}

	srv := api.New(coordinator, st, api.Options{
		Sources:       buildRegistry(log).Sources(),
		DefaultSource: cfg.DefaultSource,
		APIKey:        cfg.APIKey,
	}, log)

	return srv.Listen(fmt.Sprintf(":%s", port))
}
