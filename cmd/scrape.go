package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/skrooge/skrooge/internal/ingest"
	"github.com/skrooge/skrooge/internal/logging"
	"github.com/skrooge/skrooge/internal/source"
	"github.com/skrooge/skrooge/internal/ui"
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape [source]",
	Short: "Scrape a deal source and reconcile it into the catalog",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runScrape,
}

func init() {
	scrapeCmd.Flags().Bool("all", false, "Scrape every registered source")
	scrapeCmd.Flags().Bool("dry-run", false, "Fetch and normalize without touching the database")
	scrapeCmd.Flags().String("format", "table", "Output format: json, table")
	rootCmd.AddCommand(scrapeCmd)
}

func runScrape(cmd *cobra.Command, args []string) error {
	all, _ := cmd.Flags().GetBool("all")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	format, _ := cmd.Flags().GetString("format")

	name := cfg.DefaultSource
	if len(args) == 1 {
		name = args[0]
	}

	log := buildLogger()

	if dryRun {
		return runDryScrape(name, all, format, log)
	}

	coordinator, st, err := buildCoordinator(log)
	if err != nil {
		return err
	}
	defer st.Close()

	spin := ui.NewSpinner()
	ctx := source.WithProgress(context.Background(), spin.Update)

	var reports []ingest.RunReport
	if all {
		spin.Start("Scraping all sources...")
		var sum ingest.Summary
		reports, sum = coordinator.RunAll(ctx)
		spin.StopWith(fmt.Sprintf("Done: %d/%d sources, %d fetched, %d created, %d updated, %d skipped",
			sum.Succeeded, sum.Attempted, sum.Fetched, sum.Created, sum.Updated, sum.Skipped))
	} else {
		spin.Start(fmt.Sprintf("Scraping %s...", name))
		report, err := coordinator.RunOne(ctx, name)
		if err != nil {
			spin.Stop()
			return err
		}
		spin.StopWith(fmt.Sprintf("Done: %d fetched, %d created, %d updated, %d skipped",
			report.Fetched, report.Created, report.Updated, report.Skipped))
		reports = []ingest.RunReport{report}
	}

	switch format {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		enc.Encode(reports)
	default:
		printReportsTable(reports)
	}
	return nil
}

// runDryScrape fetches and normalizes listings without opening the store.
func runDryScrape(name string, all bool, format string, log *logging.Logger) error {
	reg := buildRegistry(log)

	names := []string{name}
	if all {
		names = reg.Sources()
	}

	spin := ui.NewSpinner()
	ctx := source.WithProgress(context.Background(), spin.Update)

	var results []*source.Result
	for _, n := range names {
		spin.Start(fmt.Sprintf("Scraping %s (dry run)...", n))
		res, err := reg.Run(ctx, n)
		if err != nil {
			spin.Stop()
			return err
		}
		spin.StopWith(fmt.Sprintf("%s: %d listings, %d errors", n, len(res.Listings), len(res.Errors)))
		results = append(results, res)
	}

	switch format {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		enc.Encode(results)
	default:
		for _, res := range results {
			printListingsTable(res)
		}
	}
	return nil
}
