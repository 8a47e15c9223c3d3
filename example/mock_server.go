package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"sync"
	"time"
)

// mockFeed holds the evolving state of the mock feed service.
type mockFeed struct {
	mu          sync.Mutex
	generation  int
	items       []map[string]any
	lastAdvance time.Time
}

// sample items rotated through by the mock feed
var sampleItems = []map[string]any{
	{
		"source": "github-advisories",
		"id":     "GHSA-demo-0001",
		"title":  "Critical RCE in example-parser",
		"url":    "https://example.com/advisories/GHSA-demo-0001",
		"signals": map[string]any{
			"severity": map[string]any{
				"level":     "critical",
				"cvss":      9.8,
				"packages":  []any{"example-parser"},
				"exploited": true,
			},
			"suggested_action": "patch-now",
		},
	},
	{
		"source": "openai-changelog",
		"id":     "release-2026-08",
		"title":  "gpt-5.2 model family released",
		"url":    "https://example.com/changelog/2026-08",
		"signals": map[string]any{
			"release": map[string]any{
				"version":    "gpt-5.2",
				"prerelease": false,
			},
			"suggested_action": "review",
		},
	},
	{
		"source": "anthropic-status",
		"id":     "incident-4417",
		"title":  "Elevated error rates on the Messages API",
		"url":    "https://example.com/status/incident-4417",
		"signals": map[string]any{
			"incident": map[string]any{
				"status": "investigating",
				"impact": "partial",
			},
		},
	},
}

// sources served by /diff/sources.json
var mockSources = []map[string]any{
	{
		"id":   "github-advisories",
		"name": "GitHub Security Advisories",
		"tags": []any{"security", "packages"},
	},
	{
		"id":   "openai-changelog",
		"name": "OpenAI Changelog",
		"tags": []any{"llm-provider", "releases"},
	},
	{
		"id":   "anthropic-status",
		"name": "Anthropic Status Page",
		"tags": []any{"llm-provider", "incidents"},
	},
}

// StartMockFeedServer runs a mock DriftWatch feed service on addr.
//
// The feed advances to a new generation (new cursor, one rotated item)
// every 30 seconds, so a watching client alternates between the cheap
// head-only fast path and full feed fetches.
// Call this in a goroutine before creating the client.
func StartMockFeedServer(addr string) {
	feed := &mockFeed{generation: 1}

	mux := http.NewServeMux()

	mux.HandleFunc("/diff/head.json", func(w http.ResponseWriter, r *http.Request) {
		feed.advance()
		writeJSON(w, feed.headDoc())
	})

	mux.HandleFunc("/diff/latest.json", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, feed.feedDoc())
	})

	mux.HandleFunc("/diff/sources.json", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"sources": mockSources})
	})

	mux.HandleFunc("/diff/stacks.json", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{
			"dependencies": map[string]any{
				"openai":    map[string]any{"sources": []any{"openai-changelog"}},
				"anthropic": map[string]any{"sources": []any{"anthropic-status"}},
				"langchain": map[string]any{"sources": []any{"github-advisories", "openai-changelog"}},
			},
		})
	})

	mux.HandleFunc("/healthz.json", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{
			"ok":              true,
			"service":         "driftwatch-mock",
			"checked_at":      time.Now().UTC().Format(time.RFC3339),
			"sources_checked": 3,
			"sources_ok":      3,
			"engine_version":  "mock-1",
		})
	})

	if err := http.ListenAndServe(addr, mux); err != nil {
		slog.Error("mock server error", "error", err)
	}
}

// advance rotates one sample item into the feed every 30 seconds.
func (f *mockFeed) advance() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if time.Since(f.lastAdvance) < 30*time.Second {
		return
	}
	f.lastAdvance = time.Now()
	f.generation++
	f.items = []map[string]any{sampleItems[rand.Intn(len(sampleItems))]}
	slog.Info("mock feed advanced", "cursor", f.cursor())
}

func (f *mockFeed) cursor() string {
	return fmt.Sprintf("gen-%04d", f.generation)
}

func (f *mockFeed) headDoc() map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()

	changed := len(f.items) > 0
	return map[string]any{
		"cursor":          f.cursor(),
		"changed":         changed,
		"generated_at":    time.Now().UTC().Format(time.RFC3339),
		"ttl_sec":         60,
		"counts":          map[string]any{"new": len(f.items)},
		"sources_checked": 3,
		"sources_ok":      3,
		"all_clear":       !changed,
	}
}

func (f *mockFeed) feedDoc() map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()

	return map[string]any{
		"cursor":       f.cursor(),
		"source":       "global",
		"generated_at": time.Now().UTC().Format(time.RFC3339),
		"buckets":      map[string]any{"new": f.items},
		"summary":      fmt.Sprintf("%d new item(s)", len(f.items)),
	}
}

func writeJSON(w http.ResponseWriter, doc map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(doc); err != nil {
		slog.Error("failed to write response", "error", err)
	}
}
