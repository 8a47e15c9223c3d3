package config

import (
	"github.com/driftwatch/driftwatch"
)

// ClientOptions converts parsed configuration into SDK constructor options.
//
// Only fields the config actually sets produce options, so SDK defaults
// apply for the rest.
func ClientOptions(cfg *Config) []driftwatch.Option {
	var opts []driftwatch.Option

	if cfg.BaseURL != "" {
		opts = append(opts, driftwatch.WithBaseURL(cfg.BaseURL))
	}
	if cfg.APIKey != "" {
		opts = append(opts, driftwatch.WithAPIKey(cfg.APIKey))
	}
	if cfg.Timeout != 0 {
		opts = append(opts, driftwatch.WithTimeout(cfg.Timeout.Duration()))
	}
	if cfg.CursorFile != "" {
		opts = append(opts, driftwatch.WithCursorFile(cfg.CursorFile))
	}
	if cfg.MemoryCursors {
		opts = append(opts, driftwatch.WithMemoryCursors())
	}

	return opts
}

// PollOptions converts parsed configuration into per-call poll options,
// shared by the poll and watch commands.
func PollOptions(cfg *Config) []driftwatch.PollOption {
	var opts []driftwatch.PollOption

	if cfg.Source != "" {
		opts = append(opts, driftwatch.ForSource(cfg.Source))
	}
	if len(cfg.Buckets) > 0 {
		buckets := make([]driftwatch.Bucket, 0, len(cfg.Buckets))
		for _, b := range cfg.Buckets {
			buckets = append(buckets, driftwatch.Bucket(b))
		}
		opts = append(opts, driftwatch.WithBuckets(buckets...))
	}
	if len(cfg.Sources) > 0 {
		opts = append(opts, driftwatch.WithSources(cfg.Sources...))
	}
	if len(cfg.Tags) > 0 {
		opts = append(opts, driftwatch.WithTags(cfg.Tags...))
	}
	if cfg.Interval != 0 {
		opts = append(opts, driftwatch.WithInterval(cfg.Interval.Duration()))
	}

	return opts
}
