// Package cursor provides resumption-token storage for driftwatch.
//
// This package is internal to driftwatch and maps feed keys ("global" or
// "source:<id>") to the opaque cursor strings the feed service issues. The
// cursor is the client's only persistent state; it is what lets a restarted
// process resume change detection where it left off.
//
// The main components are:
//
//   - [Store]: interface over cursor storage
//   - [FileStore]: durable variant backed by one JSON document
//   - [MemoryStore]: pure in-memory variant
//
// Both variants are safe for concurrent use and never surface errors;
// persistence failures degrade to in-memory behavior. Users of the
// driftwatch library should not need to interact with this package
// directly.
package cursor
