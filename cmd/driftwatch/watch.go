package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/driftwatch/driftwatch"
	"github.com/driftwatch/driftwatch/config"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// watchCmd runs the long-running feed monitor.
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Monitor the change feed continuously",
	Long: `Monitor the change feed continuously, printing each changed item
as it arrives.

The watch polls on an interval derived from the server-advertised TTL
(or the configured/flagged override), fetches the full feed only when
the cursor moved, and keeps running through transient failures. The
cursor persists locally, so a restarted watch resumes where it left off.

The watch runs until interrupted (Ctrl+C) or receives SIGTERM.

Example:
  driftwatch watch -c driftwatch.yaml
  driftwatch watch --tags security --interval 2m`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	addClientFlags(watchCmd)
	addFilterFlags(watchCmd)
	watchCmd.Flags().Duration("interval", 0, "interval between cycles (default: server-advertised TTL)")
}

func runWatch(cmd *cobra.Command, args []string) error {
	logger := newLogger()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	applyFilterFlags(cmd, cfg)
	if interval, _ := cmd.Flags().GetDuration("interval"); interval > 0 {
		cfg.Interval = config.Duration(interval)
	}

	client, err := newClient(cmd, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}
	defer client.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return client.Watch(ctx, printItem, config.PollOptions(cfg)...)
}

var (
	bucketColors = map[driftwatch.Bucket]*color.Color{
		driftwatch.BucketNew:     color.New(color.FgGreen),
		driftwatch.BucketUpdated: color.New(color.FgCyan),
		driftwatch.BucketRemoved: color.New(color.FgHiBlack),
		driftwatch.BucketFlagged: color.New(color.FgRed, color.Bold),
	}
	actionColor = color.New(color.FgYellow)
)

// printItem renders one changed item to stdout.
func printItem(ctx context.Context, item driftwatch.Item) error {
	bucketColor, ok := bucketColors[item.Bucket]
	if !ok {
		bucketColor = color.New(color.FgWhite)
	}

	ts := time.Now().Format("15:04:05")
	fmt.Printf("%s %s %s  %s",
		ts,
		bucketColor.Sprintf("%-7s", item.Bucket),
		item.Source,
		item.Title,
	)
	if item.SuggestedAction != "" {
		fmt.Printf("  %s", actionColor.Sprintf("[%s]", item.SuggestedAction))
	}
	fmt.Println()

	if sev := item.Signals.Severity; sev != nil {
		fmt.Printf("           severity=%s", sev.Level)
		if sev.CVSS != nil {
			fmt.Printf(" cvss=%.1f", *sev.CVSS)
		}
		if sev.Exploited {
			fmt.Printf(" %s", color.RedString("EXPLOITED"))
		}
		fmt.Println()
	}
	if item.URL != "" {
		fmt.Printf("           %s\n", item.URL)
	}
	return nil
}
