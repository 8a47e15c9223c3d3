package driftwatch

import (
	"encoding/json"
	"testing"
	"time"
)

// jsonDoc parses a JSON object literal the way the transport layer does,
// so decoder tests see the exact types decoders see in production.
func jsonDoc(t *testing.T, s string) map[string]any {
	t.Helper()
	var doc map[string]any
	if err := json.Unmarshal([]byte(s), &doc); err != nil {
		t.Fatalf("invalid test JSON: %v", err)
	}
	return doc
}

func TestDecodeHead_Empty(t *testing.T) {
	head := DecodeHead(map[string]any{})

	if head.Cursor != "" {
		t.Errorf("Cursor = %q, want empty", head.Cursor)
	}
	if head.Changed {
		t.Error("Changed = true, want false")
	}
	if head.TTLSec != 60 {
		t.Errorf("TTLSec = %v, want 60", head.TTLSec)
	}
	if head.Counts != (BucketCounts{}) {
		t.Errorf("Counts = %+v, want all zero", head.Counts)
	}
	if head.AllClearConfidence != nil {
		t.Errorf("AllClearConfidence = %v, want nil", *head.AllClearConfidence)
	}
	if head.Freshness != nil {
		t.Errorf("Freshness = %+v, want nil", head.Freshness)
	}
}

func TestDecodeHead_Full(t *testing.T) {
	head := DecodeHead(jsonDoc(t, `{
		"cursor": "c42",
		"changed": true,
		"generated_at": "2026-08-24T10:00:00Z",
		"ttl_sec": 120,
		"latest_url": "https://feed.example.com/diff/latest.json",
		"digest_url": "https://feed.example.com/diff/digest.json",
		"counts": {"new": 3, "updated": 1, "removed": 2, "flagged": 4},
		"sources_checked": 46,
		"sources_ok": 44,
		"all_clear": false,
		"all_clear_confidence": 0.95,
		"freshness": {"oldest_data_age_sec": 300, "mean_data_age_sec": 120.5, "stale_sources": 1, "all_fresh": false}
	}`))

	if head.Cursor != "c42" {
		t.Errorf("Cursor = %q, want %q", head.Cursor, "c42")
	}
	if !head.Changed {
		t.Error("Changed = false, want true")
	}
	if head.TTLSec != 120 {
		t.Errorf("TTLSec = %v, want 120", head.TTLSec)
	}
	want := time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC)
	if !head.GeneratedAt.Equal(want) {
		t.Errorf("GeneratedAt = %v, want %v", head.GeneratedAt, want)
	}
	if head.Counts.Total() != 10 {
		t.Errorf("Counts.Total() = %v, want 10", head.Counts.Total())
	}
	if head.SourcesChecked != 46 || head.SourcesOK != 44 {
		t.Errorf("sources = %d/%d, want 44/46 ok", head.SourcesOK, head.SourcesChecked)
	}
	if head.AllClearConfidence == nil || *head.AllClearConfidence != 0.95 {
		t.Errorf("AllClearConfidence = %v, want 0.95", head.AllClearConfidence)
	}
	if head.Freshness == nil {
		t.Fatal("Freshness = nil, want populated")
	}
	if head.Freshness.StaleSources != 1 {
		t.Errorf("Freshness.StaleSources = %v, want 1", head.Freshness.StaleSources)
	}
	if head.Freshness.MeanDataAgeSec != 120.5 {
		t.Errorf("Freshness.MeanDataAgeSec = %v, want 120.5", head.Freshness.MeanDataAgeSec)
	}
}

func TestDecodeHead_ZeroConfidenceIsNotAbsent(t *testing.T) {
	head := DecodeHead(jsonDoc(t, `{"all_clear_confidence": 0}`))
	if head.AllClearConfidence == nil {
		t.Fatal("AllClearConfidence = nil, want pointer to 0")
	}
	if *head.AllClearConfidence != 0 {
		t.Errorf("AllClearConfidence = %v, want 0", *head.AllClearConfidence)
	}
}

func TestDecodeFeed_Empty(t *testing.T) {
	feed := DecodeFeed(map[string]any{})

	if feed.Source != "global" {
		t.Errorf("Source = %q, want %q", feed.Source, "global")
	}
	if len(feed.Items) != 0 {
		t.Errorf("len(Items) = %v, want 0", len(feed.Items))
	}
	if feed.Buckets.New == nil || feed.Buckets.Removed == nil {
		t.Error("bucket slices should be empty, not nil")
	}
}

func TestDecodeFeed_CombinedBucketOrder(t *testing.T) {
	feed := DecodeFeed(jsonDoc(t, `{
		"cursor": "c2",
		"buckets": {
			"flagged": [{"id": "D"}],
			"removed": [{"id": "C"}],
			"updated": [{"id": "B"}],
			"new":     [{"id": "A"}]
		}
	}`))

	if len(feed.Items) != 4 {
		t.Fatalf("len(Items) = %v, want 4", len(feed.Items))
	}
	wantIDs := []string{"A", "B", "C", "D"}
	wantBuckets := []Bucket{BucketNew, BucketUpdated, BucketRemoved, BucketFlagged}
	for i, item := range feed.Items {
		if item.ID != wantIDs[i] {
			t.Errorf("Items[%d].ID = %q, want %q", i, item.ID, wantIDs[i])
		}
		if item.Bucket != wantBuckets[i] {
			t.Errorf("Items[%d].Bucket = %q, want %q", i, item.Bucket, wantBuckets[i])
		}
	}
}

func TestDecodeItem_Empty(t *testing.T) {
	item := DecodeItem(map[string]any{})

	if item.PublishedAt != nil || item.UpdatedAt != nil {
		t.Error("timestamps should be nil for empty document")
	}
	if item.RiskScore != nil {
		t.Errorf("RiskScore = %v, want nil", *item.RiskScore)
	}
	if item.SuggestedAction != "" {
		t.Errorf("SuggestedAction = %q, want empty", item.SuggestedAction)
	}
}

func TestDecodeItem_SuggestedActionProjection(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{
			name: "from signals",
			doc:  `{"signals": {"suggested_action": "patch-now"}}`,
			want: "patch-now",
		},
		{
			name: "absent everywhere",
			doc:  `{}`,
			want: "",
		},
		{
			name: "top-level field ignored",
			doc:  `{"suggested_action": "rogue", "signals": {}}`,
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := DecodeItem(jsonDoc(t, tt.doc))
			if item.SuggestedAction != tt.want {
				t.Errorf("SuggestedAction = %q, want %q", item.SuggestedAction, tt.want)
			}
			if item.SuggestedAction != item.Signals.SuggestedAction {
				t.Errorf("SuggestedAction = %q, diverges from Signals.SuggestedAction = %q",
					item.SuggestedAction, item.Signals.SuggestedAction)
			}
		})
	}
}

func TestDecodeItem_Signals(t *testing.T) {
	item := DecodeItem(jsonDoc(t, `{
		"source": "github-advisories",
		"id": "GHSA-1",
		"title": "RCE in example-parser",
		"published_at": "2026-08-20T08:00:00Z",
		"risk_score": 8.7,
		"signals": {
			"severity": {
				"level": "critical",
				"cvss": 9.8,
				"cwes": ["CWE-78"],
				"packages": ["example-parser"],
				"exploited": true
			},
			"release": {"version": "2.1.4", "security_patch": true},
			"incident": {"status": "resolved", "impact": "partial"},
			"deprecation": {"type": "api", "affected": ["v1/complete"], "confidence": 0.8, "source": "changelog"},
			"suggested_action": "patch-now",
			"weather": {"outlook": "cloudy"}
		}
	}`))

	sev := item.Signals.Severity
	if sev == nil {
		t.Fatal("Severity = nil, want populated")
	}
	if sev.Level != "critical" {
		t.Errorf("Severity.Level = %q, want %q", sev.Level, "critical")
	}
	if sev.CVSS == nil || *sev.CVSS != 9.8 {
		t.Errorf("Severity.CVSS = %v, want 9.8", sev.CVSS)
	}
	if !sev.Exploited {
		t.Error("Severity.Exploited = false, want true")
	}
	if len(sev.Packages) != 1 || sev.Packages[0] != "example-parser" {
		t.Errorf("Severity.Packages = %v, want [example-parser]", sev.Packages)
	}

	if rel := item.Signals.Release; rel == nil || rel.Version != "2.1.4" || !rel.SecurityPatch {
		t.Errorf("Release = %+v, want version 2.1.4 with security_patch", rel)
	}
	if inc := item.Signals.Incident; inc == nil || inc.Status != "resolved" {
		t.Errorf("Incident = %+v, want status resolved", inc)
	}
	dep := item.Signals.Deprecation
	if dep == nil || dep.Type != "api" || dep.Confidence != 0.8 {
		t.Errorf("Deprecation = %+v, want type api confidence 0.8", dep)
	}

	// unknown signal kinds are preserved untyped
	if _, ok := item.Signals.Extra["weather"]; !ok {
		t.Errorf("Extra = %v, want to contain %q", item.Signals.Extra, "weather")
	}
	if _, ok := item.Signals.Extra["severity"]; ok {
		t.Error("Extra contains a recognized kind, want only unrecognized")
	}

	if item.RiskScore == nil || *item.RiskScore != 8.7 {
		t.Errorf("RiskScore = %v, want 8.7", item.RiskScore)
	}
	if item.PublishedAt == nil {
		t.Error("PublishedAt = nil, want parsed timestamp")
	}
	if item.Raw == nil {
		t.Error("Raw = nil, want original payload preserved")
	}
}

func TestDecodeItem_MalformedFieldsDefault(t *testing.T) {
	// every field the wrong type: decoding still succeeds with defaults
	item := DecodeItem(jsonDoc(t, `{
		"source": 7,
		"id": [],
		"title": {},
		"published_at": "not-a-timestamp",
		"risk_score": "high",
		"signals": "nope"
	}`))

	if item.Source != "" || item.ID != "" || item.Title != "" {
		t.Errorf("mismatched fields should default to empty, got %+v", item)
	}
	if item.PublishedAt != nil {
		t.Errorf("PublishedAt = %v, want nil for unparseable timestamp", item.PublishedAt)
	}
	if item.RiskScore != nil {
		t.Errorf("RiskScore = %v, want nil for non-numeric value", item.RiskScore)
	}
}

func TestDecodeSourceInfo_Empty(t *testing.T) {
	src := DecodeSourceInfo(map[string]any{})
	if src.ID != "" || src.Enabled || src.Tags != nil {
		t.Errorf("DecodeSourceInfo({}) = %+v, want zero value", src)
	}
}

func TestDecodeHealthCheck_Empty(t *testing.T) {
	health := DecodeHealthCheck(map[string]any{})
	if health.OK || health.Service != "" || health.SourcesChecked != 0 {
		t.Errorf("DecodeHealthCheck({}) = %+v, want zero value", health)
	}
}

func TestDecodeStackMap_ModernShape(t *testing.T) {
	stacks := decodeStackMap(jsonDoc(t, `{
		"dependencies": {
			"OpenAI": {"sources": ["s1", "s2"]},
			"langchain": {"sources": ["s2", "s3"]}
		}
	}`))

	if got := stacks["openai"]; len(got) != 2 || got[0] != "s1" {
		t.Errorf("stacks[openai] = %v, want [s1 s2]", got)
	}
	if got := stacks["langchain"]; len(got) != 2 {
		t.Errorf("stacks[langchain] = %v, want 2 sources", got)
	}
}

func TestDecodeStackMap_LegacyShape(t *testing.T) {
	stacks := decodeStackMap(jsonDoc(t, `{
		"dependency_map": {
			"OpenAI": ["s1", "s2"]
		}
	}`))

	if got := stacks["openai"]; len(got) != 2 || got[1] != "s2" {
		t.Errorf("stacks[openai] = %v, want [s1 s2]", got)
	}
}

func TestDecodeStackMap_Empty(t *testing.T) {
	stacks := decodeStackMap(map[string]any{})
	if len(stacks) != 0 {
		t.Errorf("decodeStackMap({}) = %v, want empty", stacks)
	}
}
