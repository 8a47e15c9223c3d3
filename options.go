package driftwatch

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"
)

// clientConfig holds mutable state during Client construction.
type clientConfig struct {
	baseURL       string
	apiKey        string
	timeout       time.Duration
	cursorFile    string
	memoryCursors bool
	logger        *slog.Logger
	userAgent     string
}

// Option is a function that configures a [Client] during construction.
//
// Option implements the functional options pattern, allowing optional
// configuration to be passed to [New] in a type-safe, extensible way.
// Options return an error if validation fails.
//
// Built-in options: [WithBaseURL], [WithAPIKey], [WithTimeout],
// [WithCursorFile], [WithMemoryCursors], [WithLogger], [WithUserAgent].
type Option func(*clientConfig) error

// WithBaseURL sets the feed service origin.
//
// All endpoint paths (/diff/head.json, /diff/latest.json, ...) are resolved
// relative to this URL. Defaults to [DefaultBaseURL]. A trailing slash is
// trimmed.
//
// Example:
//
//	c, err := driftwatch.New(
//	    driftwatch.WithBaseURL("https://feed.internal.example.com"),
//	)
//
// Returns an error if the URL is empty, unparseable, or missing an
// http/https scheme.
func WithBaseURL(rawURL string) Option {
	return func(cfg *clientConfig) error {
		if rawURL == "" {
			return errors.New("base URL cannot be empty")
		}
		parsed, err := url.Parse(rawURL)
		if err != nil {
			return fmt.Errorf("invalid base URL: %w", err)
		}
		if parsed.Scheme != "http" && parsed.Scheme != "https" {
			return fmt.Errorf("base URL scheme must be http or https, got %q", parsed.Scheme)
		}
		cfg.baseURL = strings.TrimSuffix(rawURL, "/")
		return nil
	}
}

// WithAPIKey sets the API key sent as the X-API-Key header on every
// request. Without a key the client operates on the service's anonymous
// tier.
func WithAPIKey(key string) Option {
	return func(cfg *clientConfig) error {
		cfg.apiKey = key
		return nil
	}
}

// WithTimeout sets the per-request timeout applied to every fetch.
//
// One fetch gets one timeout window; the watch loop's interval is separate.
// Defaults to 15 seconds.
//
// Returns an error if the duration is zero or negative.
func WithTimeout(d time.Duration) Option {
	return func(cfg *clientConfig) error {
		if d <= 0 {
			return errors.New("timeout must be positive")
		}
		cfg.timeout = d
		return nil
	}
}

// WithCursorFile sets an explicit path for the durable cursor document.
//
// By default cursors persist under the per-user configuration directory,
// overridable with the DRIFTWATCH_CURSOR_FILE environment variable.
// Mutually exclusive with [WithMemoryCursors].
//
// Returns an error if the path is empty.
func WithCursorFile(path string) Option {
	return func(cfg *clientConfig) error {
		if path == "" {
			return errors.New("cursor file path cannot be empty")
		}
		if cfg.memoryCursors {
			return errors.New("cannot combine WithCursorFile and WithMemoryCursors")
		}
		cfg.cursorFile = path
		return nil
	}
}

// WithMemoryCursors disables cursor persistence entirely; cursors live only
// for the client's lifetime and every restart re-fetches the full feed.
//
// Use this in environments without durable local storage, or when the
// caller manages its own resumption state. Mutually exclusive with
// [WithCursorFile].
func WithMemoryCursors() Option {
	return func(cfg *clientConfig) error {
		if cfg.cursorFile != "" {
			return errors.New("cannot combine WithMemoryCursors and WithCursorFile")
		}
		cfg.memoryCursors = true
		return nil
	}
}

// WithLogger sets a custom [slog.Logger] for the client.
//
// The client logs watch-cycle failures, handler panics, and cursor
// persistence degradation. If not specified, [slog.Default] is used.
//
// Returns an error if the logger is nil.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *clientConfig) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		cfg.logger = logger
		return nil
	}
}

// WithUserAgent overrides the User-Agent header sent on every request.
// Defaults to "driftwatch-go/<version>".
//
// Returns an error if the value is empty.
func WithUserAgent(ua string) Option {
	return func(cfg *clientConfig) error {
		if ua == "" {
			return errors.New("user agent cannot be empty")
		}
		cfg.userAgent = ua
		return nil
	}
}
