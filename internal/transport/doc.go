// Package transport provides the HTTP fetch layer for driftwatch.
//
// This package is internal to driftwatch and performs the bounded-time JSON
// GETs against the feed service. It owns header policy (User-Agent, Accept,
// API key), the per-request timeout, and connection pooling.
//
// The main components are:
//
//   - [Client]: pooled HTTP client fetching JSON documents
//   - [StatusError]: typed failure for non-2xx responses
//
// Users of the driftwatch library should not need to interact with this
// package directly. Configuration is done through the main driftwatch
// package.
package transport
