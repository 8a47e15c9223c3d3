package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// maxResponseBodySize caps feed document reads. Full feeds for busy cycles
// run to a few hundred KB; 4MB leaves generous headroom without letting a
// misbehaving server exhaust memory.
const maxResponseBodySize = 4 << 20

// connection pooling limits to prevent resource exhaustion on long-running
// watches
const (
	defaultMaxIdleConns        = 100
	defaultMaxIdleConnsPerHost = 10
	defaultMaxConnsPerHost     = 10
	defaultIdleConnTimeout     = 60 * time.Second // conservative: matches common ALB defaults
)

// DefaultTimeout is the per-request timeout applied when the caller does
// not configure one.
const DefaultTimeout = 15 * time.Second

// StatusError is returned by [Client.FetchJSON] when the server responds
// with a non-2xx status. It carries the status code and URL so callers can
// log a useful diagnostic; the client does not distinguish status failures
// beyond this.
type StatusError struct {
	// Code is the HTTP status code.
	Code int

	// URL is the requested URL.
	URL string
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s", e.Code, e.URL)
}

// Client performs bounded-time JSON GETs against the feed service.
//
// Every request carries the identifying User-Agent, an Accept header, and
// (when configured) the API key. Timeouts are applied per-request via
// context rather than as a global client timeout, so a timed-out request is
// cancelled in flight rather than abandoned. A timeout surfaces as the same
// error kind as any other network failure; callers distinguish by message
// only.
type Client struct {
	httpClient *http.Client
	timeout    time.Duration
	userAgent  string
	apiKey     string
}

// NewClient creates a transport [Client].
//
// timeout bounds each individual fetch; zero or negative means
// [DefaultTimeout]. userAgent identifies the client to the service. apiKey,
// when non-empty, is sent as X-API-Key on every request.
func NewClient(timeout time.Duration, userAgent, apiKey string) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		httpClient: &http.Client{
			// no default timeout - per-request timeouts via context
			Transport: &http.Transport{
				MaxIdleConns:        defaultMaxIdleConns,
				MaxIdleConnsPerHost: defaultMaxIdleConnsPerHost,
				MaxConnsPerHost:     defaultMaxConnsPerHost,
				IdleConnTimeout:     defaultIdleConnTimeout,
				DisableKeepAlives:   false, // explicitly enable connection reuse
			},
		},
		timeout:   timeout,
		userAgent: userAgent,
		apiKey:    apiKey,
	}
}

// Timeout returns the per-request timeout this client applies.
func (c *Client) Timeout() time.Duration {
	return c.timeout
}

// FetchJSON performs a single GET of url and decodes the response body as a
// JSON object.
//
// A non-2xx response returns a [*StatusError]. Network failures, timeout
// expiry, and malformed response bodies return wrapped errors. The response
// body is capped at 4MB.
func (c *Client) FetchJSON(ctx context.Context, url string) (map[string]any, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request for %s: %w", url, err)
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Code: resp.StatusCode, URL: url}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response from %s: %w", url, err)
	}

	var doc map[string]any
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("invalid JSON from %s: %w", url, err)
	}

	return doc, nil
}

// Close closes all idle connections in the client's connection pool.
//
// Safe to call multiple times. After Close the client remains usable; new
// connections are established as needed.
func (c *Client) Close() {
	if c == nil || c.httpClient == nil {
		return
	}
	if transport, ok := c.httpClient.Transport.(*http.Transport); ok {
		transport.CloseIdleConnections()
	}
}
