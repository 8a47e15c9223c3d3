package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/driftwatch/driftwatch"
)

func main() {
	// start mock feed service (see mock_server.go)
	go StartMockFeedServer(":9777")
	time.Sleep(100 * time.Millisecond)

	client, err := driftwatch.New(
		driftwatch.WithBaseURL("http://localhost:9777"),
		driftwatch.WithMemoryCursors(),
		driftwatch.WithTimeout(5*time.Second),
	)
	if err != nil {
		slog.Error("failed to create client", "error", err)
		os.Exit(1)
	}
	defer client.Close()

	ctx := context.Background()

	// one-shot facade calls
	health, err := client.CheckHealth(ctx)
	if err != nil {
		slog.Error("health check failed", "error", err)
		os.Exit(1)
	}
	fmt.Printf("service %q healthy=%v (%d/%d sources ok)\n",
		health.Service, health.OK, health.SourcesOK, health.SourcesChecked)

	ids, err := client.DiscoverSources(ctx, "openai", "langchain", "unknownlib")
	if err != nil {
		slog.Error("discovery failed", "error", err)
		os.Exit(1)
	}
	fmt.Printf("sources covering openai+langchain: %v\n", ids)

	fmt.Println()
	fmt.Println("Watching the mock feed (new cursor every 30s).")
	fmt.Println("Press Ctrl+C to stop.")
	fmt.Println()

	// watch with a short interval so the demo is lively; real deployments
	// usually let the server-advertised TTL drive the interval
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err = client.Watch(ctx, func(ctx context.Context, item driftwatch.Item) error {
		fmt.Printf("[%s] %s: %s", item.Bucket, item.Source, item.Title)
		if item.SuggestedAction != "" {
			fmt.Printf("  -> %s", item.SuggestedAction)
		}
		fmt.Println()
		return nil
	}, driftwatch.WithInterval(10*time.Second))
	if err != nil {
		slog.Error("watch error", "error", err)
		os.Exit(1)
	}
}
