package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// discoverCmd maps dependency names to the source ids that cover them.
var discoverCmd = &cobra.Command{
	Use:   "discover <dependency>...",
	Short: "Map dependency names to feed source ids",
	Long: `Map dependency names (libraries, providers, frameworks) to the feed
source ids that cover them, using the service's stack-discovery document.

Unknown names are silently ignored. The result is the union of all
matched source ids, suitable for --sources.

Example:
  driftwatch discover openai langchain
  driftwatch poll --sources "$(driftwatch discover openai | tr '\n' ',')"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDiscover,
}

func init() {
	rootCmd.AddCommand(discoverCmd)
	addClientFlags(discoverCmd)
}

func runDiscover(cmd *cobra.Command, args []string) error {
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

	ids, err := client.DiscoverSources(cmd.Context(), args...)
	if err != nil {
		return fmt.Errorf("discovery failed: %w", err)
	}

	for _, id := range ids {
		fmt.Println(id)
	}
	return nil
}
