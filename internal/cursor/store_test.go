package cursor

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()

	if _, ok := s.Get(GlobalKey); ok {
		t.Error("Get on empty store = ok, want miss")
	}

	s.Set(GlobalKey, "c1")
	s.Set(SourceKey("s1"), "c2")

	if c, ok := s.Get(GlobalKey); !ok || c != "c1" {
		t.Errorf("Get(global) = %q, %v, want c1, true", c, ok)
	}
	if c, ok := s.Get(SourceKey("s1")); !ok || c != "c2" {
		t.Errorf("Get(source:s1) = %q, %v, want c2, true", c, ok)
	}

	s.Clear(GlobalKey)
	if _, ok := s.Get(GlobalKey); ok {
		t.Error("Get after Clear(global) = ok, want miss")
	}
	if _, ok := s.Get(SourceKey("s1")); !ok {
		t.Error("Clear(global) removed source:s1 as well")
	}

	s.Clear()
	if _, ok := s.Get(SourceKey("s1")); ok {
		t.Error("Get after Clear() = ok, want everything removed")
	}
}

func TestSourceKey(t *testing.T) {
	if got := SourceKey("github-advisories"); got != "source:github-advisories" {
		t.Errorf("SourceKey() = %q, want %q", got, "source:github-advisories")
	}
}

func TestFileStore_PersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cursors.json")

	s1 := NewFileStore(path, discard())
	s1.Set(GlobalKey, "c1")
	s1.Set(SourceKey("s1"), "c2")

	s2 := NewFileStore(path, discard())
	if c, ok := s2.Get(GlobalKey); !ok || c != "c1" {
		t.Errorf("reloaded Get(global) = %q, %v, want c1, true", c, ok)
	}
	if c, ok := s2.Get(SourceKey("s1")); !ok || c != "c2" {
		t.Errorf("reloaded Get(source:s1) = %q, %v, want c2, true", c, ok)
	}
}

func TestFileStore_MissingFileIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nonexistent", "cursors.json")

	s := NewFileStore(path, discard())
	if _, ok := s.Get(GlobalKey); ok {
		t.Error("Get on missing file = ok, want empty store")
	}

	// the first Set creates the directory and the file
	s.Set(GlobalKey, "c1")
	if _, err := os.Stat(path); err != nil {
		t.Errorf("cursor file not created: %v", err)
	}
}

func TestFileStore_CorruptFileIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cursors.json")
	if err := os.WriteFile(path, []byte("{corrupt"), 0o644); err != nil {
		t.Fatal(err)
	}

	s := NewFileStore(path, discard())
	if _, ok := s.Get(GlobalKey); ok {
		t.Error("Get on corrupt file = ok, want empty store")
	}

	// the store still works, and the next write repairs the file
	s.Set(GlobalKey, "c1")
	s2 := NewFileStore(path, discard())
	if c, ok := s2.Get(GlobalKey); !ok || c != "c1" {
		t.Errorf("Get after repair = %q, %v, want c1, true", c, ok)
	}
}

func TestFileStore_UnwritablePathDegradesSilently(t *testing.T) {
	// a path under a regular file can never be created
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(blocker, "cursors.json")

	s := NewFileStore(path, discard())
	s.Set(GlobalKey, "c1")

	// persistence failed, but the in-memory state is intact
	if c, ok := s.Get(GlobalKey); !ok || c != "c1" {
		t.Errorf("Get after failed save = %q, %v, want c1, true", c, ok)
	}
}

func TestFileStore_Clear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cursors.json")

	s := NewFileStore(path, discard())
	s.Set(GlobalKey, "c1")
	s.Set(SourceKey("s1"), "c2")
	s.Clear(GlobalKey)

	s2 := NewFileStore(path, discard())
	if _, ok := s2.Get(GlobalKey); ok {
		t.Error("Clear(global) not persisted")
	}
	if _, ok := s2.Get(SourceKey("s1")); !ok {
		t.Error("Clear(global) removed source:s1 as well")
	}
}

func TestDefaultFilePath_EnvOverride(t *testing.T) {
	t.Setenv(EnvFileOverride, "/custom/cursors.json")

	path, ok := DefaultFilePath()
	if !ok {
		t.Fatal("DefaultFilePath() ok = false, want true with override set")
	}
	if path != "/custom/cursors.json" {
		t.Errorf("DefaultFilePath() = %q, want %q", path, "/custom/cursors.json")
	}
}
