package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// healthCmd checks the feed service's pipeline health.
var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check feed service health",
	Long: `Fetch the feed service's pipeline health document and print it.

Exit codes:
  0 - Service reports healthy
  1 - Service unreachable or reports unhealthy

Example:
  driftwatch health`,
	RunE: runHealth,
}

func init() {
	rootCmd.AddCommand(healthCmd)
	addClientFlags(healthCmd)
}

func runHealth(cmd *cobra.Command, args []string) error {
	logger := newLogger()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	client, err := newClient(cmd, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}
	defer client.Close()

	health, err := client.CheckHealth(cmd.Context())
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}

	status := color.GreenString("healthy")
	if !health.OK {
		status = color.RedString("unhealthy")
	}

	fmt.Printf("%s (%s)\n", status, health.Service)
	fmt.Printf("  engine:  %s\n", health.EngineVersion)
	fmt.Printf("  sources: %d/%d ok\n", health.SourcesOK, health.SourcesChecked)
	if !health.CheckedAt.IsZero() {
		fmt.Printf("  checked: %s\n", health.CheckedAt.Format("2006-01-02 15:04:05 MST"))
	}

	if !health.OK {
		return fmt.Errorf("service reports unhealthy")
	}
	return nil
}
