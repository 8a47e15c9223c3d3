package driftwatch

import (
	"errors"
	"fmt"
	"time"
)

// pollConfig holds mutable state while applying poll options.
type pollConfig struct {
	feedSource string
	buckets    []Bucket
	sources    []string
	tags       []string
	interval   time.Duration
}

// newPollConfig applies opts over the defaults for a single Poll or Watch
// call.
func newPollConfig(opts []PollOption) (*pollConfig, error) {
	cfg := &pollConfig{}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// bucketSet returns the requested buckets as a set, defaulting to
// [DefaultBuckets].
func (cfg *pollConfig) bucketSet() map[Bucket]bool {
	buckets := cfg.buckets
	if len(buckets) == 0 {
		buckets = DefaultBuckets
	}
	set := make(map[Bucket]bool, len(buckets))
	for _, b := range buckets {
		set[b] = true
	}
	return set
}

// PollOption configures a single [Client.Poll], [Client.Head],
// [Client.FetchFeed], or [Client.Watch] call.
//
// Built-in options: [ForSource], [WithBuckets], [WithSources], [WithTags],
// [WithInterval].
type PollOption func(*pollConfig) error

// ForSource targets the per-source feed for sourceID instead of the global
// cross-source feed.
//
// A per-source poll uses the per-source head and feed endpoints and stores
// its cursor under a distinct feed key ("source:<id>"), so it never
// interferes with the global poll's resumption state.
//
// Returns an error if sourceID is empty.
func ForSource(sourceID string) PollOption {
	return func(cfg *pollConfig) error {
		if sourceID == "" {
			return errors.New("source id cannot be empty")
		}
		cfg.feedSource = sourceID
		return nil
	}
}

// WithBuckets restricts returned items to the given change buckets.
//
// Without this option the default set applies: new, updated and flagged.
// Removed items are only ever returned when [BucketRemoved] is requested
// explicitly.
//
// Example:
//
//	items, err := c.Poll(ctx,
//	    driftwatch.WithBuckets(driftwatch.BucketNew, driftwatch.BucketRemoved),
//	)
//
// Returns an error on an unknown bucket.
func WithBuckets(buckets ...Bucket) PollOption {
	return func(cfg *pollConfig) error {
		for _, b := range buckets {
			switch b {
			case BucketNew, BucketUpdated, BucketRemoved, BucketFlagged:
			default:
				return fmt.Errorf("unknown bucket %q", b)
			}
		}
		cfg.buckets = append(cfg.buckets, buckets...)
		return nil
	}
}

// WithSources restricts returned items to those from the given source ids.
//
// Source ids are service-defined; use [Client.ListSources] or
// [Client.DiscoverSources] to find them.
func WithSources(ids ...string) PollOption {
	return func(cfg *pollConfig) error {
		cfg.sources = append(cfg.sources, ids...)
		return nil
	}
}

// WithTags restricts returned items to those whose source carries at least
// one of the given tags.
//
// Tag resolution uses a source→tags table fetched from the service on first
// use and cached for the client's lifetime; a long-running watch will not
// observe server-side tag changes without a new client. If the table cannot
// be fetched, tag-filtered polls return no items rather than failing.
func WithTags(tags ...string) PollOption {
	return func(cfg *pollConfig) error {
		cfg.tags = append(cfg.tags, tags...)
		return nil
	}
}

// WithInterval overrides the interval between watch cycles.
//
// Only [Client.Watch] consults it: without an override the watch derives
// its interval from the server-advertised TTL. One-shot calls such as
// [Client.Poll] accept and ignore it.
//
// Returns an error if the duration is zero or negative.
func WithInterval(d time.Duration) PollOption {
	return func(cfg *pollConfig) error {
		if d <= 0 {
			return errors.New("interval must be positive")
		}
		cfg.interval = d
		return nil
	}
}
