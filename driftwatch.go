package driftwatch

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/driftwatch/driftwatch/internal/cursor"
	"github.com/driftwatch/driftwatch/internal/transport"
)

// Version is the client library version, reported in the User-Agent header.
const Version = "0.4.0"

// DefaultBaseURL is the public feed service origin used when [WithBaseURL]
// is not supplied.
const DefaultBaseURL = "https://feed.driftwatch.dev"

// Client is a polling client for the DriftWatch change feed.
//
// Client implements the three-tier polling protocol: it fetches the small
// head document on every cycle, compares its cursor against the stored one,
// and downloads the full feed only when something actually changed. The
// cursor persists across process restarts (unless [WithMemoryCursors] is
// used), so a restarted client resumes where it left off.
//
// A Client is safe for concurrent use. Independent polls (e.g., a global
// poll and a per-source poll) share only the cursor store, whose operations
// are safe to interleave; their feed keys are distinct so the cursors never
// collide.
//
// The typical one-shot lifecycle is:
//
//	c, err := driftwatch.New(driftwatch.WithAPIKey(key))
//	if err != nil {
//	    slog.Error("failed to create client", "error", err)
//	    os.Exit(1)
//	}
//	defer c.Close()
//
//	items, err := c.Poll(ctx, driftwatch.WithTags("security"))
//
// For unattended monitoring, use [Client.Watch] instead.
type Client struct {
	baseURL   string
	transport *transport.Client
	cursors   cursor.Store
	logger    *slog.Logger

	// source→tags lookup behind WithTags filtering, populated at most once
	// for the client's lifetime.
	tagsOnce     sync.Once
	tagsBySource map[string][]string
}

// New creates a [Client] with the given options.
//
// All options have defaults: base URL [DefaultBaseURL], timeout 15s, no API
// key, cursors persisted under the per-user configuration directory. A
// cursor file that cannot be read or written never fails construction; the
// store degrades to in-memory behavior instead.
//
// Returns an error only if an option is invalid.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		baseURL:   DefaultBaseURL,
		timeout:   transport.DefaultTimeout,
		userAgent: "driftwatch-go/" + Version,
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:   cfg.baseURL,
		transport: transport.NewClient(cfg.timeout, cfg.userAgent, cfg.apiKey),
		cursors:   newCursorStore(cfg, logger),
		logger:    logger,
	}, nil
}

// newCursorStore resolves the cursor persistence mode from the config.
func newCursorStore(cfg *clientConfig, logger *slog.Logger) cursor.Store {
	if cfg.memoryCursors {
		return cursor.NewMemoryStore()
	}
	path := cfg.cursorFile
	if path == "" {
		defaultPath, ok := cursor.DefaultFilePath()
		if !ok {
			// no user config dir and no override: memory-only
			return cursor.NewMemoryStore()
		}
		path = defaultPath
	}
	return cursor.NewFileStore(path, logger)
}

// BaseURL returns the configured feed service origin.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Close releases the client's idle HTTP connections.
//
// Safe to call multiple times. The client remains usable afterwards; new
// connections are established as needed.
func (c *Client) Close() {
	c.transport.Close()
}

// Head fetches and decodes the head document for the global feed, or for a
// per-source feed when [ForSource] is given.
//
// Head has no side effects on the stored cursor; use [Client.Poll] for the
// full protocol.
func (c *Client) Head(ctx context.Context, opts ...PollOption) (*Head, error) {
	cfg, err := newPollConfig(opts)
	if err != nil {
		return nil, err
	}
	return c.fetchHead(ctx, cfg)
}

func (c *Client) fetchHead(ctx context.Context, cfg *pollConfig) (*Head, error) {
	doc, err := c.transport.FetchJSON(ctx, c.headURL(cfg.feedSource))
	if err != nil {
		return nil, err
	}
	head := DecodeHead(doc)
	return &head, nil
}

// FetchFeed fetches and decodes the full feed document unconditionally,
// bypassing the head comparison. It does not read or update the stored
// cursor; cursor movement is part of the poll protocol only.
func (c *Client) FetchFeed(ctx context.Context, opts ...PollOption) (*Feed, error) {
	cfg, err := newPollConfig(opts)
	if err != nil {
		return nil, err
	}
	doc, err := c.transport.FetchJSON(ctx, c.latestURL(cfg.feedSource))
	if err != nil {
		return nil, err
	}
	feed := DecodeFeed(doc)
	return &feed, nil
}

// Poll runs one cycle of the three-tier polling protocol and returns the
// changed items, filtered by the requested buckets, sources, and tags.
//
// The cycle fetches the head document first. If the stored cursor for this
// feed key equals the head's cursor, nothing changed: Poll returns an empty
// slice without touching the full feed endpoint. That emptiness is a
// verified result, not an unchecked one — combined with Head.AllClear it is
// the server's attestation that every source was checked and none changed.
//
// Otherwise Poll fetches the full feed (following the head's latest_url
// when present) and stores the feed's own cursor, which is authoritative
// even when it differs from the head's. A crash between the feed fetch and
// the cursor write redelivers the same items on the next cycle; item
// delivery is at-least-once and consumers must process idempotently.
func (c *Client) Poll(ctx context.Context, opts ...PollOption) ([]Item, error) {
	cfg, err := newPollConfig(opts)
	if err != nil {
		return nil, err
	}
	return c.poll(ctx, cfg)
}

func (c *Client) poll(ctx context.Context, cfg *pollConfig) ([]Item, error) {
	head, err := c.fetchHead(ctx, cfg)
	if err != nil {
		return nil, err
	}

	key := cfg.feedKey()
	if stored, ok := c.cursors.Get(key); ok && stored == head.Cursor {
		return []Item{}, nil
	}

	latestURL := head.LatestURL
	if latestURL == "" {
		latestURL = c.latestURL(cfg.feedSource)
	}
	doc, err := c.transport.FetchJSON(ctx, latestURL)
	if err != nil {
		return nil, err
	}
	feed := DecodeFeed(doc)

	if feed.Cursor != "" {
		c.cursors.Set(key, feed.Cursor)
	}

	return c.filterItems(ctx, feed.Items, cfg), nil
}

// filterItems applies the bucket, source, and tag filters to the combined
// item sequence, preserving its order.
func (c *Client) filterItems(ctx context.Context, items []Item, cfg *pollConfig) []Item {
	buckets := cfg.bucketSet()

	var sources map[string]bool
	if len(cfg.sources) > 0 {
		sources = make(map[string]bool, len(cfg.sources))
		for _, id := range cfg.sources {
			sources[id] = true
		}
	}

	var tagsBySource map[string][]string
	if len(cfg.tags) > 0 {
		tagsBySource = c.sourceTags(ctx)
	}

	filtered := make([]Item, 0, len(items))
	for _, item := range items {
		if !buckets[item.Bucket] {
			continue
		}
		if sources != nil && !sources[item.Source] {
			continue
		}
		if len(cfg.tags) > 0 && !hasAnyTag(tagsBySource[item.Source], cfg.tags) {
			continue
		}
		filtered = append(filtered, item)
	}
	return filtered
}

// hasAnyTag reports whether sourceTags and wanted intersect.
func hasAnyTag(sourceTags, wanted []string) bool {
	for _, have := range sourceTags {
		for _, want := range wanted {
			if have == want {
				return true
			}
		}
	}
	return false
}

// sourceTags returns the source→tags lookup, fetching and caching the
// source list on first use. A failed fetch caches an empty table for the
// client's lifetime, so tag-filtered polls return no items rather than
// failing; the failure is logged once.
func (c *Client) sourceTags(ctx context.Context) map[string][]string {
	c.tagsOnce.Do(func() {
		c.tagsBySource = make(map[string][]string)
		sources, err := c.ListSources(ctx)
		if err != nil {
			c.logger.Warn("source list unavailable, tag filters will match nothing",
				"error", err.Error(),
			)
			return
		}
		for _, src := range sources {
			c.tagsBySource[src.ID] = src.Tags
		}
	})
	return c.tagsBySource
}

// ListSources fetches the static source catalog.
func (c *Client) ListSources(ctx context.Context) ([]SourceInfo, error) {
	doc, err := c.transport.FetchJSON(ctx, c.baseURL+"/diff/sources.json")
	if err != nil {
		return nil, err
	}
	return decodeSourceList(doc), nil
}

// DiscoverSources maps dependency names (e.g., "openai", "langchain") to
// the source ids that cover them, using the service's stack-discovery
// document.
//
// Names are matched case-insensitively; unknown names are silently ignored.
// The result is the union of all mapped source ids, duplicates collapsed,
// sorted. The stacks document is fetched on every call — unlike the tag
// table, discovery is expected to be rare and its answers to change.
func (c *Client) DiscoverSources(ctx context.Context, names ...string) ([]string, error) {
	doc, err := c.transport.FetchJSON(ctx, c.baseURL+"/diff/stacks.json")
	if err != nil {
		return nil, err
	}
	stacks := decodeStackMap(doc)

	seen := make(map[string]bool)
	for _, name := range names {
		for _, id := range stacks[strings.ToLower(name)] {
			seen[id] = true
		}
	}

	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// CheckHealth fetches the pipeline-wide liveness document.
func (c *Client) CheckHealth(ctx context.Context) (*HealthCheck, error) {
	doc, err := c.transport.FetchJSON(ctx, c.baseURL+"/healthz.json")
	if err != nil {
		return nil, err
	}
	health := DecodeHealthCheck(doc)
	return &health, nil
}

// ResetCursors clears the stored cursors for the given feed keys, or every
// stored cursor when called with no keys. The next poll on a cleared key
// fetches the full feed.
//
// Feed keys are "global" for the cross-source feed and "source:<id>" for
// per-source feeds.
func (c *Client) ResetCursors(keys ...string) {
	c.cursors.Clear(keys...)
}

// feedKey returns the cursor-store key for this poll's feed.
func (cfg *pollConfig) feedKey() string {
	if cfg.feedSource == "" {
		return cursor.GlobalKey
	}
	return cursor.SourceKey(cfg.feedSource)
}

// headURL returns the head document URL for the global or per-source feed.
func (c *Client) headURL(source string) string {
	if source == "" {
		return c.baseURL + "/diff/head.json"
	}
	return c.baseURL + "/diff/" + source + "/head.json"
}

// latestURL returns the feed document URL for the global or per-source feed.
func (c *Client) latestURL(source string) string {
	if source == "" {
		return c.baseURL + "/diff/latest.json"
	}
	return c.baseURL + "/diff/" + source + "/latest.json"
}
