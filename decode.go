package driftwatch

import (
	"strings"
	"time"
)

// defaultTTLSec is the Head TTL assumed when the payload omits ttl_sec.
const defaultTTLSec = 60

// Decoding in this package is deliberately lenient: every decoder is a total
// function from an arbitrary JSON-shaped document to a fully-populated
// domain record. Absent or mismatched fields become zero values or nil,
// never errors. The feed format is expected to grow additively server-side,
// and a client that breaks on an unknown or reshaped field defeats its own
// purpose as an unattended monitor.

// DecodeHead maps a loosely-typed JSON document onto a [Head].
//
// Missing ttl_sec defaults to 60, missing counts to all zeros. Decoding the
// empty document yields a usable zero Head; DecodeHead never fails.
func DecodeHead(doc map[string]any) Head {
	h := Head{
		Cursor:         asString(doc["cursor"]),
		Changed:        asBool(doc["changed"]),
		GeneratedAt:    asTime(doc["generated_at"]),
		TTLSec:         defaultTTLSec,
		LatestURL:      asString(doc["latest_url"]),
		DigestURL:      asString(doc["digest_url"]),
		Counts:         decodeCounts(asMap(doc["counts"])),
		SourcesChecked: asInt(doc["sources_checked"]),
		SourcesOK:      asInt(doc["sources_ok"]),
		AllClear:       asBool(doc["all_clear"]),
	}

	if ttl, ok := asIntOK(doc["ttl_sec"]); ok && ttl > 0 {
		h.TTLSec = ttl
	}
	if conf, ok := asFloatOK(doc["all_clear_confidence"]); ok {
		h.AllClearConfidence = &conf
	}
	if fr := asMap(doc["freshness"]); fr != nil {
		h.Freshness = &Freshness{
			OldestDataAgeSec: asFloat(fr["oldest_data_age_sec"]),
			MeanDataAgeSec:   asFloat(fr["mean_data_age_sec"]),
			StaleSources:     asInt(fr["stale_sources"]),
			AllFresh:         asBool(fr["all_fresh"]),
		}
	}
	return h
}

// DecodeFeed maps a loosely-typed JSON document onto a [Feed].
//
// Missing bucket arrays decode as empty. The combined Items sequence is
// rebuilt from the buckets in the fixed order new, updated, removed,
// flagged, regardless of any item ordering in the payload, so bucket order
// is an invariant of the decoder rather than a server promise.
func DecodeFeed(doc map[string]any) Feed {
	f := Feed{
		Cursor:         asString(doc["cursor"]),
		PreviousCursor: asString(doc["previous_cursor"]),
		Source:         asString(doc["source"]),
		GeneratedAt:    asTime(doc["generated_at"]),
		Summary:        asString(doc["summary"]),
	}
	if f.Source == "" {
		f.Source = "global"
	}

	buckets := asMap(doc["buckets"])
	f.Buckets = FeedBuckets{
		New:     decodeItems(buckets["new"], BucketNew),
		Updated: decodeItems(buckets["updated"], BucketUpdated),
		Removed: decodeItems(buckets["removed"], BucketRemoved),
		Flagged: decodeItems(buckets["flagged"], BucketFlagged),
	}

	f.Items = make([]Item, 0, len(f.Buckets.New)+len(f.Buckets.Updated)+len(f.Buckets.Removed)+len(f.Buckets.Flagged))
	f.Items = append(f.Items, f.Buckets.New...)
	f.Items = append(f.Items, f.Buckets.Updated...)
	f.Items = append(f.Items, f.Buckets.Removed...)
	f.Items = append(f.Items, f.Buckets.Flagged...)

	return f
}

// decodeItems decodes a bucket's item array, stamping each item with the
// bucket it came from.
func decodeItems(v any, bucket Bucket) []Item {
	raw, ok := v.([]any)
	if !ok {
		return []Item{}
	}
	items := make([]Item, 0, len(raw))
	for _, entry := range raw {
		doc, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		item := DecodeItem(doc)
		item.Bucket = bucket
		items = append(items, item)
	}
	return items
}

// DecodeItem maps a loosely-typed JSON document onto an [Item].
//
// The item's SuggestedAction is projected from signals.suggested_action;
// a top-level suggested_action field in the payload is ignored so the two
// can never disagree. The original document is preserved in Raw.
func DecodeItem(doc map[string]any) Item {
	item := Item{
		Source:      asString(doc["source"]),
		ID:          asString(doc["id"]),
		Title:       asString(doc["title"]),
		URL:         asString(doc["url"]),
		Excerpt:     asString(doc["excerpt"]),
		PublishedAt: asTimePtr(doc["published_at"]),
		UpdatedAt:   asTimePtr(doc["updated_at"]),
		Bucket:      Bucket(asString(doc["bucket"])),
		Signals:     decodeSignals(asMap(doc["signals"])),
		Provenance:  asMap(doc["provenance"]),
		Raw:         doc,
	}
	item.SuggestedAction = item.Signals.SuggestedAction
	if score, ok := asFloatOK(doc["risk_score"]); ok {
		item.RiskScore = &score
	}
	return item
}

// signal kind keys recognized by this client version. Anything else in the
// signals object lands in Signals.Extra untyped.
var knownSignalKinds = map[string]bool{
	"severity":         true,
	"release":          true,
	"incident":         true,
	"deprecation":      true,
	"suggested_action": true,
}

// decodeSignals decodes the open signals bundle attached to an item.
func decodeSignals(doc map[string]any) Signals {
	s := Signals{
		SuggestedAction: asString(doc["suggested_action"]),
	}

	if sev := asMap(doc["severity"]); sev != nil {
		sig := &SeveritySignal{
			Level:      asString(sev["level"]),
			CWEs:       asStringSlice(sev["cwes"]),
			Packages:   asStringSlice(sev["packages"]),
			Exploited:  asBool(sev["exploited"]),
			Provenance: asMap(sev["provenance"]),
		}
		if cvss, ok := asFloatOK(sev["cvss"]); ok {
			sig.CVSS = &cvss
		}
		s.Severity = sig
	}

	if rel := asMap(doc["release"]); rel != nil {
		s.Release = &ReleaseSignal{
			Version:       asString(rel["version"]),
			Prerelease:    asBool(rel["prerelease"]),
			SecurityPatch: asBool(rel["security_patch"]),
			Provenance:    asMap(rel["provenance"]),
		}
	}

	if inc := asMap(doc["incident"]); inc != nil {
		s.Incident = &IncidentSignal{
			Status:     asString(inc["status"]),
			Impact:     asString(inc["impact"]),
			Provenance: asMap(inc["provenance"]),
		}
	}

	if dep := asMap(doc["deprecation"]); dep != nil {
		s.Deprecation = &DeprecationSignal{
			Type:       asString(dep["type"]),
			Affected:   asStringSlice(dep["affected"]),
			Confidence: asFloat(dep["confidence"]),
			Source:     asString(dep["source"]),
			Provenance: asMap(dep["provenance"]),
		}
	}

	for key, value := range doc {
		if knownSignalKinds[key] {
			continue
		}
		if s.Extra == nil {
			s.Extra = make(map[string]any)
		}
		s.Extra[key] = value
	}

	return s
}

// DecodeSourceInfo maps a loosely-typed JSON document onto a [SourceInfo].
func DecodeSourceInfo(doc map[string]any) SourceInfo {
	return SourceInfo{
		ID:          asString(doc["id"]),
		Name:        asString(doc["name"]),
		Tags:        asStringSlice(doc["tags"]),
		Description: asString(doc["description"]),
		Homepage:    asString(doc["homepage"]),
		Enabled:     asBool(doc["enabled"]),
		Health:      asString(doc["health"]),
		HeadURL:     asString(doc["head_url"]),
		LatestURL:   asString(doc["latest_url"]),
	}
}

// decodeSourceList decodes the { sources: [...] } document.
func decodeSourceList(doc map[string]any) []SourceInfo {
	raw, ok := doc["sources"].([]any)
	if !ok {
		return []SourceInfo{}
	}
	sources := make([]SourceInfo, 0, len(raw))
	for _, entry := range raw {
		m, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		sources = append(sources, DecodeSourceInfo(m))
	}
	return sources
}

// DecodeHealthCheck maps a loosely-typed JSON document onto a [HealthCheck].
func DecodeHealthCheck(doc map[string]any) HealthCheck {
	return HealthCheck{
		OK:             asBool(doc["ok"]),
		Service:        asString(doc["service"]),
		CheckedAt:      asTime(doc["checked_at"]),
		SourcesChecked: asInt(doc["sources_checked"]),
		SourcesOK:      asInt(doc["sources_ok"]),
		EngineVersion:  asString(doc["engine_version"]),
	}
}

// decodeStackMap normalizes the stack-discovery document into a
// dependency-name → source-id-list mapping with lowercased keys.
//
// Two wire shapes are supported transparently: the current object-valued
// form {"dependencies": {"name": {"sources": [...]}}} and the legacy
// array-valued form {"dependency_map": {"name": [...]}}. Shape detection is
// by field presence; the rest of the client never branches on shape.
func decodeStackMap(doc map[string]any) map[string][]string {
	result := make(map[string][]string)

	if deps := asMap(doc["dependencies"]); deps != nil {
		for name, entry := range deps {
			m, ok := entry.(map[string]any)
			if !ok {
				continue
			}
			result[strings.ToLower(name)] = asStringSlice(m["sources"])
		}
		return result
	}

	if legacy := asMap(doc["dependency_map"]); legacy != nil {
		for name, entry := range legacy {
			result[strings.ToLower(name)] = asStringSlice(entry)
		}
	}

	return result
}

// decodeCounts decodes the per-bucket counts object, defaulting to zeros.
func decodeCounts(doc map[string]any) BucketCounts {
	return BucketCounts{
		New:     asInt(doc["new"]),
		Updated: asInt(doc["updated"]),
		Removed: asInt(doc["removed"]),
		Flagged: asInt(doc["flagged"]),
	}
}

// The as* helpers below coerce arbitrary decoded-JSON values into concrete
// Go types, returning zero values on any mismatch. Indexing a nil map is
// safe in Go, so callers pass fields of possibly-nil maps directly.

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asBool(v any) bool {
	b, _ := v.(bool)
	return b
}

// asFloat coerces a JSON number to float64, returning 0 on mismatch.
func asFloat(v any) float64 {
	f, _ := asFloatOK(v)
	return f
}

// asFloatOK coerces a JSON number to float64, reporting whether the value
// was actually numeric. Needed where "absent" and "zero" must stay distinct
// (confidence scores, risk scores).
func asFloatOK(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func asInt(v any) int {
	n, _ := asIntOK(v)
	return n
}

func asIntOK(v any) (int, bool) {
	f, ok := asFloatOK(v)
	if !ok {
		return 0, false
	}
	return int(f), true
}

func asMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

func asStringSlice(v any) []string {
	raw, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, entry := range raw {
		if s, ok := entry.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// asTime parses an RFC 3339 timestamp, returning the zero time on mismatch.
func asTime(v any) time.Time {
	s, ok := v.(string)
	if !ok {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// asTimePtr parses an RFC 3339 timestamp, returning nil on mismatch so
// absent and invalid timestamps are indistinguishable from null.
func asTimePtr(v any) *time.Time {
	t := asTime(v)
	if t.IsZero() {
		return nil
	}
	return &t
}
