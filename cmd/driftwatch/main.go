// Package main is the entry point for the driftwatch CLI.
//
// Driftwatch can be used either as a library (SDK) or as a standalone
// binary. This CLI provides the standalone binary approach.
//
// Usage:
//
//	driftwatch watch -c config.yaml     # Monitor the feed continuously
//	driftwatch poll -c config.yaml      # One-shot poll for changed items
//	driftwatch sources                  # List the monitored sources
//	driftwatch discover openai langchain
//	driftwatch health                   # Check service health
//	driftwatch validate -c config.yaml  # Validate configuration
//	driftwatch version                  # Show version info
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/driftwatch/driftwatch"
	"github.com/driftwatch/driftwatch/config"
	"github.com/spf13/cobra"
)

// Version information - set by GoReleaser at build time via ldflags.
// Example: go build -ldflags "-X main.commit=abc123"
var (
	commit = "none"
	date   = "unknown"
)

// rootCmd is the base command when called without subcommands.
// It just displays help - actual functionality is in subcommands.
var rootCmd = &cobra.Command{
	Use:   "driftwatch",
	Short: "A change-feed monitor for upstream dependencies",
	Long: `Driftwatch polls the DriftWatch change feed for upstream dependency
changes: advisories, releases, incidents, and deprecations.

Each poll fetches a small head document first and downloads the full
feed only when the cursor moved, so an idle feed costs almost nothing.
The cursor persists locally, so a restarted watch resumes where it
left off.

Quick start:
  1. Optionally create a config file (driftwatch.yaml)
  2. Run: driftwatch watch -c driftwatch.yaml
  3. Or one-shot: driftwatch poll --tags security`,
	// No Run/RunE means this just shows help when called without subcommands
}

// Execute runs the root command.
// This is the main entry point called from main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error, just exit with code 1
		os.Exit(1)
	}
}

func main() {
	Execute()
}

// versionCmd prints version information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print the version, commit hash, and build date of this driftwatch binary.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("driftwatch %s\n", driftwatch.Version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built:  %s\n", date)
	},
}

func init() {
	// Register subcommands with root
	rootCmd.AddCommand(versionCmd)
}

// newLogger creates a JSON logger for CLI use.
func newLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}

// loadConfig reads the optional -c/--config flag. A missing flag yields an
// empty config, so every command works without a file.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		return &config.Config{}, nil
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// newClient builds an SDK client from config plus shared CLI flags.
func newClient(cmd *cobra.Command, cfg *config.Config, logger *slog.Logger) (*driftwatch.Client, error) {
	if baseURL, _ := cmd.Flags().GetString("base-url"); baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if apiKey, _ := cmd.Flags().GetString("api-key"); apiKey != "" {
		cfg.APIKey = apiKey
	}

	opts := append(config.ClientOptions(cfg), driftwatch.WithLogger(logger))
	return driftwatch.New(opts...)
}

// addClientFlags registers the flags shared by every command that talks to
// the service.
func addClientFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("config", "c", "", "path to config file")
	cmd.Flags().String("base-url", "", "feed service origin (overrides config)")
	cmd.Flags().String("api-key", "", "API key (overrides config)")
}

// addFilterFlags registers the item-filter flags shared by poll and watch.
func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().StringSlice("tags", nil, "only items whose source has one of these tags")
	cmd.Flags().StringSlice("sources", nil, "only items from these source ids")
	cmd.Flags().StringSlice("buckets", nil, "change buckets to include (new, updated, removed, flagged)")
	cmd.Flags().String("source", "", "poll the per-source feed for this source id")
}

// applyFilterFlags overlays filter flags onto the config.
func applyFilterFlags(cmd *cobra.Command, cfg *config.Config) {
	if tags, _ := cmd.Flags().GetStringSlice("tags"); len(tags) > 0 {
		cfg.Tags = tags
	}
	if sources, _ := cmd.Flags().GetStringSlice("sources"); len(sources) > 0 {
		cfg.Sources = sources
	}
	if buckets, _ := cmd.Flags().GetStringSlice("buckets"); len(buckets) > 0 {
		cfg.Buckets = buckets
	}
	if source, _ := cmd.Flags().GetString("source"); source != "" {
		cfg.Source = source
	}
}
