// Package driftwatch provides a polling client for the DriftWatch change
// feed — a hosted service that watches upstream dependency sources
// (advisories, release notes, status pages, deprecation notices) and
// publishes the changes as a diff feed.
//
// Driftwatch is designed as an SDK-first library. The core of the client is
// a three-tier polling protocol: every cycle fetches a small head document,
// compares its cursor against the locally stored one, and downloads the
// full feed only when something actually changed. An empty result is
// therefore a verified "nothing changed", attested by the server, not an
// absence of checking.
//
// # Quick Start
//
// One-shot poll for changed items:
//
//	c, _ := driftwatch.New(driftwatch.WithAPIKey(os.Getenv("DRIFTWATCH_API_KEY")))
//	defer c.Close()
//
//	items, err := c.Poll(context.Background(), driftwatch.WithTags("security"))
//
// Long-running watch with graceful shutdown:
//
//	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer stop()
//
//	c.Watch(ctx, func(ctx context.Context, item driftwatch.Item) error {
//	    log.Printf("[%s] %s: %s", item.Bucket, item.Source, item.Title)
//	    return nil
//	}) // blocks until context is cancelled
//
// # Configuration
//
// Driftwatch uses the functional options pattern for configuration:
//
//	c, err := driftwatch.New(
//	    driftwatch.WithBaseURL("https://feed.internal.example.com"),
//	    driftwatch.WithTimeout(5 * time.Second),
//	    driftwatch.WithCursorFile("/var/lib/driftwatch/cursors.json"),
//	)
//
// Poll and watch calls take their own options:
//
//	items, err := c.Poll(ctx,
//	    driftwatch.WithBuckets(driftwatch.BucketNew, driftwatch.BucketFlagged),
//	    driftwatch.WithSources("github-advisories"),
//	)
//
// # Cursors and delivery semantics
//
// The client's only persistent state is a cursor per feed key, stored by
// default in a JSON document under the per-user configuration directory.
// The cursor is written after a feed fetch completes, so a crash in between
// redelivers the same items on restart: delivery is at-least-once and item
// handlers must be idempotent. Persistence failures never surface as
// errors; the store degrades to in-memory behavior with a one-time warning.
//
// # Architecture
//
// Driftwatch consists of the public root package plus internal plumbing:
//
//   - internal/transport: bounded-time JSON fetches with pooled connections
//   - internal/cursor: durable and in-memory cursor stores
//   - config: YAML configuration for the standalone CLI
//   - cmd/driftwatch: the CLI binary
//
// The internal packages are not part of the public API and may change
// without notice.
package driftwatch
