// Standalone mock feed service for testing the CLI.
//
// Usage:
//
//	go run ./example/cmd/mockserver
//
// Then in another terminal:
//
//	go run ./cmd/driftwatch watch --base-url http://localhost:9777
package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"sync"
	"time"
)

func main() {
	fmt.Println("Mock feed service starting on :9777")
	fmt.Println("The feed cursor advances every 30 seconds")
	fmt.Println("Press Ctrl+C to stop")
	fmt.Println()

	var (
		mu          sync.Mutex
		generation  = 1
		lastAdvance time.Time
		item        map[string]any
	)

	items := []map[string]any{
		{
			"source": "github-advisories",
			"id":     "GHSA-demo-0001",
			"title":  "Critical RCE in example-parser",
			"signals": map[string]any{
				"severity":         map[string]any{"level": "critical", "cvss": 9.8, "exploited": true},
				"suggested_action": "patch-now",
			},
		},
		{
			"source": "openai-changelog",
			"id":     "release-2026-08",
			"title":  "gpt-5.2 model family released",
			"signals": map[string]any{
				"release":          map[string]any{"version": "gpt-5.2"},
				"suggested_action": "review",
			},
		},
	}

	advance := func() (cursor string, changed bool) {
		mu.Lock()
		defer mu.Unlock()
		if time.Since(lastAdvance) >= 30*time.Second {
			lastAdvance = time.Now()
			generation++
			item = items[rand.Intn(len(items))]
			slog.Info("feed advanced", "generation", generation)
		}
		return fmt.Sprintf("gen-%04d", generation), item != nil
	}

	writeJSON := func(w http.ResponseWriter, doc map[string]any) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(doc)
	}

	http.HandleFunc("/diff/head.json", func(w http.ResponseWriter, r *http.Request) {
		cursor, changed := advance()
		writeJSON(w, map[string]any{
			"cursor":          cursor,
			"changed":         changed,
			"ttl_sec":         60,
			"sources_checked": 2,
			"sources_ok":      2,
			"all_clear":       !changed,
		})
	})

	http.HandleFunc("/diff/latest.json", func(w http.ResponseWriter, r *http.Request) {
		cursor, _ := advance()
		mu.Lock()
		buckets := map[string]any{}
		if item != nil {
			buckets["new"] = []any{item}
		}
		mu.Unlock()
		writeJSON(w, map[string]any{
			"cursor":  cursor,
			"source":  "global",
			"buckets": buckets,
		})
	})

	http.HandleFunc("/diff/sources.json", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"sources": []any{
			map[string]any{"id": "github-advisories", "name": "GitHub Security Advisories", "tags": []any{"security"}},
			map[string]any{"id": "openai-changelog", "name": "OpenAI Changelog", "tags": []any{"llm-provider"}},
		}})
	})

	http.HandleFunc("/diff/stacks.json", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"dependencies": map[string]any{
			"openai": map[string]any{"sources": []any{"openai-changelog"}},
		}})
	})

	http.HandleFunc("/healthz.json", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{
			"ok":              true,
			"service":         "driftwatch-mock",
			"sources_checked": 2,
			"sources_ok":      2,
			"engine_version":  "mock-1",
		})
	})

	if err := http.ListenAndServe(":9777", nil); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}
