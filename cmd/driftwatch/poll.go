package main

import (
	"fmt"
	"os"

	"github.com/driftwatch/driftwatch"
	"github.com/driftwatch/driftwatch/config"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// pollCmd runs a single poll cycle and prints the changed items.
var pollCmd = &cobra.Command{
	Use:   "poll",
	Short: "Run one poll cycle and print changed items",
	Long: `Run a single cycle of the polling protocol and print the changed
items as a table.

An empty result means the feed verifiably did not change since the last
poll: the stored cursor matched the head document, so the full feed was
never downloaded. Use 'driftwatch reset' semantics via --fresh to force
a full fetch.

Example:
  driftwatch poll -c driftwatch.yaml
  driftwatch poll --tags security --buckets new,flagged
  driftwatch poll --source github-advisories`,
	RunE: runPoll,
}

func init() {
	rootCmd.AddCommand(pollCmd)

	addClientFlags(pollCmd)
	addFilterFlags(pollCmd)
	pollCmd.Flags().Bool("fresh", false, "clear the stored cursor first, forcing a full feed fetch")
}

func runPoll(cmd *cobra.Command, args []string) error {
	logger := newLogger()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	applyFilterFlags(cmd, cfg)

	client, err := newClient(cmd, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}
	defer client.Close()

	if fresh, _ := cmd.Flags().GetBool("fresh"); fresh {
		client.ResetCursors()
	}

	items, err := client.Poll(cmd.Context(), config.PollOptions(cfg)...)
	if err != nil {
		return fmt.Errorf("poll failed: %w", err)
	}

	if len(items) == 0 {
		fmt.Println("No changes since last poll.")
		return nil
	}

	renderItems(items)
	fmt.Printf("%d item(s)\n", len(items))
	return nil
}

// renderItems prints items as a table on stdout.
func renderItems(items []driftwatch.Item) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Bucket", "Source", "ID", "Title", "Action"})
	table.SetAutoWrapText(false)

	for _, item := range items {
		title := item.Title
		if len(title) > 60 {
			title = title[:57] + "..."
		}
		table.Append([]string{
			item.Bucket.String(),
			item.Source,
			item.ID,
			title,
			item.SuggestedAction,
		})
	}

	table.Render()
}
