package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/skrooge/skrooge/config"
	"github.com/skrooge/skrooge/internal/amazon"
	"github.com/skrooge/skrooge/internal/fetch"
	"github.com/skrooge/skrooge/internal/ingest"
	"github.com/skrooge/skrooge/internal/logging"
	"github.com/skrooge/skrooge/internal/ozbargain"
	"github.com/skrooge/skrooge/internal/source"
	"github.com/skrooge/skrooge/internal/store"
	"github.com/skrooge/skrooge/internal/woolworths"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "skrooge",
	Short: "Skrooge - Australian deal aggregation CLI & MCP server",
	Long:  "A Go-based CLI tool and MCP server that ingests Australian deal feeds into a local catalog.",
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("source", "", "Default deal source (default: ozbargain)")
	rootCmd.PersistentFlags().Bool("respect-robots", true, "Respect robots.txt rules")
	rootCmd.PersistentFlags().String("db", "", "SQLite database path (default: skrooge.db)")
	rootCmd.PersistentFlags().Bool("quiet", false, "Suppress log output")
}

func initConfig() {
	cfg = config.DefaultConfig()
	cfg.LoadFromEnv()

	// Override from flags
	if v, _ := rootCmd.PersistentFlags().GetString("source"); v != "" {
		cfg.DefaultSource = v
	}
	if v, _ := rootCmd.PersistentFlags().GetBool("respect-robots"); !v {
		cfg.RespectRobots = false
	}
	if v, _ := rootCmd.PersistentFlags().GetString("db"); v != "" {
		cfg.DBDSN = v
	}
}

func buildLogger() *logging.Logger {
	if quiet, _ := rootCmd.PersistentFlags().GetBool("quiet"); quiet {
		return logging.NewQuiet()
	}
	return logging.New()
}

// buildFetchClient creates the shared rate-limited HTTP client from config.
func buildFetchClient() *fetch.Client {
	robots := fetch.NewRobotsChecker(cfg.RespectRobots)
	return fetch.NewClient(fetch.Options{
		MaxRetries: cfg.MaxRetries,
		RetryDelay: time.Duration(cfg.RetryDelayMs) * time.Millisecond,
		RateGap:    time.Duration(cfg.RateLimitMs) * time.Millisecond,
		Timeout:    time.Duration(cfg.TimeoutMs) * time.Millisecond,
	}, robots)
}

// buildRegistry registers all available source adapters. Each factory builds
// its own fetch client so every adapter instance gets its own rate gate;
// pacing is per upstream, never shared across sources.
func buildRegistry(log *logging.Logger) *source.Registry {
	reg := source.NewRegistry()
	reg.Register(ozbargain.Name, func() source.Scraper {
		return ozbargain.New(buildFetchClient(), log).WithPages(cfg.FeedPages)
	})
	reg.Register(amazon.Name, func() source.Scraper {
		return amazon.New(buildFetchClient(), log)
	})
	reg.Register(woolworths.Name, func() source.Scraper {
		return woolworths.New(buildFetchClient(), log)
	})
	return reg
}

func openStore() (*store.SQLiteStore, error) {
	s, err := store.Open(cfg.DBDSN)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", cfg.DBDSN, err)
	}
	return s, nil
}

// buildCoordinator wires the full ingestion pipeline.
func buildCoordinator(log *logging.Logger) (*ingest.Coordinator, *store.SQLiteStore, error) {
	st, err := openStore()
	if err != nil {
		return nil, nil, err
	}
	reconciler := ingest.NewReconciler(st, log)
	coordinator := ingest.NewCoordinator(buildRegistry(log), reconciler, log, cfg.MaxConcurrent)
	return coordinator, st, nil
}
