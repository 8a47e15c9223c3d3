package cursor

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// EnvFileOverride names the environment variable that overrides the default
// cursor file location.
const EnvFileOverride = "DRIFTWATCH_CURSOR_FILE"

// DefaultFilePath returns the default cursor file location under the
// per-user configuration directory, honoring [EnvFileOverride]. The second
// return value is false when no usable location exists (no config dir and
// no override), in which case callers should fall back to a [MemoryStore].
func DefaultFilePath() (string, bool) {
	if path := os.Getenv(EnvFileOverride); path != "" {
		return path, true
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", false
	}
	return filepath.Join(dir, "driftwatch", "cursors.json"), true
}

// FileStore is a durable [Store] backed by a single JSON document mapping
// feed keys to cursor strings.
//
// Construction never fails: a missing, unreadable, or corrupted document is
// treated as an empty store. Writes persist the whole map before returning;
// a failed write logs one warning (only the first time) and the store
// silently continues with in-memory state, so a caller's poll loop is never
// broken by a full disk or revoked permissions.
//
// The load-then-write cycle is not atomic against other processes writing
// the same file; concurrent processes sharing one cursor file can lose each
// other's updates. Within one process the store is safe for interleaved use.
type FileStore struct {
	mu       sync.Mutex
	path     string
	cursors  map[string]string
	logger   *slog.Logger
	warnOnce sync.Once
}

// NewFileStore creates a [FileStore] persisting to path, loading any
// existing document. logger may be nil, in which case slog.Default is used.
func NewFileStore(path string, logger *slog.Logger) *FileStore {
	if logger == nil {
		logger = slog.Default()
	}
	s := &FileStore{
		path:    path,
		cursors: make(map[string]string),
		logger:  logger,
	}
	s.load()
	return s
}

// Path returns the file location this store persists to.
func (s *FileStore) Path() string {
	return s.path
}

// Get returns the cursor stored under key.
func (s *FileStore) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.cursors[key]
	return c, ok
}

// Set stores cursor under key and persists the document.
func (s *FileStore) Set(key, cursor string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cursors[key] = cursor
	s.save()
}

// Clear removes the given keys, or every entry when called with none, and
// persists the document.
func (s *FileStore) Clear(keys ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(keys) == 0 {
		s.cursors = make(map[string]string)
	} else {
		for _, key := range keys {
			delete(s.cursors, key)
		}
	}
	s.save()
}

// load reads the cursor document. Any failure leaves the store empty.
func (s *FileStore) load() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.warnDegraded("load", err)
		}
		return
	}
	var cursors map[string]string
	if err := json.Unmarshal(data, &cursors); err != nil {
		s.warnDegraded("parse", err)
		return
	}
	s.cursors = cursors
}

// save writes the cursor document. Callers must hold s.mu.
// Any failure leaves the in-memory state authoritative.
func (s *FileStore) save() {
	data, err := json.MarshalIndent(s.cursors, "", "  ")
	if err != nil {
		s.warnDegraded("encode", err)
		return
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		s.warnDegraded("mkdir", err)
		return
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		s.warnDegraded("write", err)
	}
}

// warnDegraded logs the first persistence failure, then stays quiet.
// Repeating the warning every cycle of a long-running watch would only
// drown the logs; the degradation itself is accepted behavior.
func (s *FileStore) warnDegraded(op string, err error) {
	s.warnOnce.Do(func() {
		s.logger.Warn("cursor file unavailable, continuing in memory only",
			"op", op,
			"path", s.path,
			"error", err.Error(),
		)
	})
}
