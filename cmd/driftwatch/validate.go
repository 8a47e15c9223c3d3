package main

import (
	"fmt"
	"strings"

	"github.com/driftwatch/driftwatch/config"
	"github.com/spf13/cobra"
)

// validateCmd validates a config file without contacting the service.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a config file",
	Long: `Validate a driftwatch configuration file without contacting the
feed service.

This command parses the YAML, expands environment variables, and
validates all fields. It's useful for CI/CD pipelines or pre-deployment
checks.

Exit codes:
  0 - Config is valid
  1 - Config is invalid (error details printed to stderr)

Example:
  driftwatch validate -c driftwatch.yaml
  driftwatch validate --config /etc/driftwatch/config.yaml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringP("config", "c", "", "path to config file (required)")
	_ = validateCmd.MarkFlagRequired("config")
}

func runValidate(cmd *cobra.Command, args []string) error {
	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	feed := "global"
	if cfg.Source != "" {
		feed = "source:" + cfg.Source
	}
	interval := "server TTL"
	if cfg.Interval != 0 {
		interval = cfg.Interval.Duration().String()
	}
	buckets := "new, updated, flagged (default)"
	if len(cfg.Buckets) > 0 {
		buckets = strings.Join(cfg.Buckets, ", ")
	}

	fmt.Printf("Config is valid!\n")
	fmt.Printf("  Feed:     %s\n", feed)
	fmt.Printf("  Interval: %s\n", interval)
	fmt.Printf("  Buckets:  %s\n", buckets)
	if len(cfg.Tags) > 0 {
		fmt.Printf("  Tags:     %s\n", strings.Join(cfg.Tags, ", "))
	}
	if len(cfg.Sources) > 0 {
		fmt.Printf("  Sources:  %s\n", strings.Join(cfg.Sources, ", "))
	}

	return nil
}
