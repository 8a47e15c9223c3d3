package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// sourcesCmd lists the sources the service monitors.
var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List the monitored upstream sources",
	Long: `List the upstream sources the feed service monitors, with their
tags and health status.

Source ids from this list can be used with --sources, --source, and in
config files.

Example:
  driftwatch sources
  driftwatch sources --base-url https://feed.internal.example.com`,
	RunE: runSources,
}

func init() {
	rootCmd.AddCommand(sourcesCmd)
	addClientFlags(sourcesCmd)
}

func runSources(cmd *cobra.Command, args []string) error {
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

	sources, err := client.ListSources(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list sources: %w", err)
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"ID", "Name", "Tags", "Health", "Enabled"})

	for _, src := range sources {
		health := src.Health
		switch health {
		case "ok", "healthy":
			health = color.GreenString(health)
		case "":
		default:
			health = color.RedString(health)
		}

		enabled := "no"
		if src.Enabled {
			enabled = "yes"
		}

		table.Append([]string{
			src.ID,
			src.Name,
			strings.Join(src.Tags, ","),
			health,
			enabled,
		})
	}

	table.Render()
	fmt.Printf("%d source(s)\n", len(sources))
	return nil
}
