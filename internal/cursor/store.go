package cursor

// GlobalKey is the feed key under which the cross-source feed's cursor is
// stored.
const GlobalKey = "global"

// SourceKey returns the feed key for a per-source feed. Per-source cursors
// live under distinct keys so they never collide with the global cursor;
// cursors are meaningful only relative to their feed key.
func SourceKey(sourceID string) string {
	return "source:" + sourceID
}

// Store maps feed keys to opaque cursor strings.
//
// Implementations must be safe for interleaved Get/Set from concurrent poll
// calls, and must never fail: persistence problems degrade to in-memory
// behavior rather than surfacing errors. The store knows nothing about
// feeds or items; a cursor is an opaque token compared bitwise by callers.
type Store interface {
	// Get returns the cursor stored under key, reporting whether one exists.
	Get(key string) (string, bool)

	// Set stores cursor under key, replacing any previous value. Durable
	// implementations persist before returning; on persistence failure they
	// silently continue in memory.
	Set(key, cursor string)

	// Clear removes the given keys, or every entry when called with none.
	Clear(keys ...string)
}
