package driftwatch

import "time"

// Bucket classifies the kind of change an [Item] represents.
//
// Bucket is a string type that can hold one of four predefined values:
// [BucketNew], [BucketUpdated], [BucketRemoved], or [BucketFlagged].
// Using a string type allows for easy JSON serialization and human-readable
// logging while maintaining type safety through the defined constants.
type Bucket string

const (
	// BucketNew indicates an item that appeared since the previous feed.
	BucketNew Bucket = "new"

	// BucketUpdated indicates an item whose content changed since the
	// previous feed.
	BucketUpdated Bucket = "updated"

	// BucketRemoved indicates an item that disappeared from its source.
	// Removed items are excluded from poll results unless explicitly
	// requested via [WithBuckets].
	BucketRemoved Bucket = "removed"

	// BucketFlagged indicates an item the service marked as requiring
	// attention regardless of novelty (e.g., an exploited vulnerability).
	BucketFlagged Bucket = "flagged"
)

// String returns the string representation of the bucket.
// This implements the fmt.Stringer interface.
func (b Bucket) String() string {
	return string(b)
}

// DefaultBuckets is the bucket set used by [Client.Poll] and [Client.Watch]
// when no [WithBuckets] option is supplied. It excludes [BucketRemoved]:
// most consumers react to things that exist, not to things that vanished.
var DefaultBuckets = []Bucket{BucketNew, BucketUpdated, BucketFlagged}

// BucketCounts holds the per-bucket item counts advertised by a [Head]
// document. All counts default to zero when absent from the payload.
type BucketCounts struct {
	New     int `json:"new"`
	Updated int `json:"updated"`
	Removed int `json:"removed"`
	Flagged int `json:"flagged"`
}

// Total returns the sum of all four bucket counts.
func (c BucketCounts) Total() int {
	return c.New + c.Updated + c.Removed + c.Flagged
}

// Freshness holds optional data-age metrics from a [Head] document.
//
// The service attaches these when it can measure how stale its view of each
// upstream source is. A Head without freshness metrics has a nil Freshness.
type Freshness struct {
	// OldestDataAgeSec is the age in seconds of the most stale source data.
	OldestDataAgeSec float64 `json:"oldest_data_age_sec"`

	// MeanDataAgeSec is the mean age in seconds across all sources.
	MeanDataAgeSec float64 `json:"mean_data_age_sec"`

	// StaleSources is the number of sources considered stale this cycle.
	StaleSources int `json:"stale_sources"`

	// AllFresh reports whether every source was within its freshness window.
	AllFresh bool `json:"all_fresh"`
}

// Head is the lightweight pointer document fetched first in every poll
// cycle. It exists so that "nothing changed" can be detected without
// downloading the full feed.
//
// Head is never mutated; each fetch produces a fresh value.
type Head struct {
	// Cursor is the opaque token identifying the feed state this head
	// points at. Compared bitwise against the stored cursor.
	Cursor string `json:"cursor"`

	// Changed reports whether the service observed any change in its most
	// recent generation cycle.
	Changed bool `json:"changed"`

	// GeneratedAt is when the service generated this head.
	// Zero if the payload omitted it.
	GeneratedAt time.Time `json:"generated_at"`

	// TTLSec is the server-recommended polling interval in seconds.
	// Defaults to 60 when absent.
	TTLSec int `json:"ttl_sec"`

	// LatestURL points at the full feed document. When non-empty, polls
	// follow it instead of the constructed /diff/latest.json path.
	LatestURL string `json:"latest_url"`

	// DigestURL optionally points at a condensed digest document.
	DigestURL string `json:"digest_url"`

	// Counts holds per-bucket item counts for the current feed.
	Counts BucketCounts `json:"counts"`

	// SourcesChecked is the number of upstream sources examined in the
	// generation cycle that produced this head.
	SourcesChecked int `json:"sources_checked"`

	// SourcesOK is the number of those sources that responded healthily.
	SourcesOK int `json:"sources_ok"`

	// AllClear is the server's attestation that no changes occurred AND all
	// sources were healthy this cycle. The client never infers it from
	// Changed or the counts; only the server can claim it.
	AllClear bool `json:"all_clear"`

	// AllClearConfidence is the server's confidence in AllClear, in [0, 1].
	// Nil when the payload omitted it.
	AllClearConfidence *float64 `json:"all_clear_confidence"`

	// Freshness holds optional data-age metrics. Nil when absent.
	Freshness *Freshness `json:"freshness"`
}

// FeedBuckets partitions a feed's items by change classification.
type FeedBuckets struct {
	New     []Item `json:"new"`
	Updated []Item `json:"updated"`
	Removed []Item `json:"removed"`
	Flagged []Item `json:"flagged"`
}

// Feed is the full feed document, fetched only when a [Head] indicates the
// cursor moved past the stored value.
type Feed struct {
	// Cursor is the feed's own cursor. When non-empty it is authoritative
	// for cursor storage, even if it differs from the head that triggered
	// the fetch.
	Cursor string `json:"cursor"`

	// PreviousCursor is the cursor of the feed generation this one diffs
	// against.
	PreviousCursor string `json:"previous_cursor"`

	// Source is the source id this feed covers, or "global" for the
	// cross-source feed.
	Source string `json:"source"`

	// GeneratedAt is when the service generated this feed.
	GeneratedAt time.Time `json:"generated_at"`

	// Buckets partitions the items by change classification.
	Buckets FeedBuckets `json:"buckets"`

	// Items is the combined sequence: the buckets concatenated in the fixed
	// order new, updated, removed, flagged.
	Items []Item `json:"items"`

	// Summary is a human-readable narrative of what changed.
	Summary string `json:"summary"`
}

// Item is one unit of change in a feed.
type Item struct {
	// Source is the id of the upstream source this item came from.
	Source string `json:"source"`

	// ID identifies the item uniquely within its source.
	ID string `json:"id"`

	// Title is the item's headline.
	Title string `json:"title"`

	// URL is the item's canonical URL.
	URL string `json:"url"`

	// Excerpt is a short plain-text extract of the item's content.
	Excerpt string `json:"excerpt"`

	// PublishedAt is when the item was first published. Nil when unknown.
	PublishedAt *time.Time `json:"published_at"`

	// UpdatedAt is when the item last changed. Nil when unknown.
	UpdatedAt *time.Time `json:"updated_at"`

	// Bucket is the item's change classification.
	Bucket Bucket `json:"bucket"`

	// Signals bundles the structured facts the service extracted from the
	// item (severity, release, incident, deprecation, and future kinds).
	Signals Signals `json:"signals"`

	// SuggestedAction is the service-derived operational response code
	// (e.g., "patch-now", "review", "none"). It is a projection of
	// Signals.SuggestedAction, never computed independently. Empty when the
	// service suggested nothing.
	SuggestedAction string `json:"suggested_action,omitempty"`

	// RiskScore is the service-assigned risk score on a service-defined
	// scale. Nil when absent.
	RiskScore *float64 `json:"risk_score"`

	// Provenance carries service metadata about how the item was derived.
	Provenance map[string]any `json:"provenance,omitempty"`

	// Raw preserves the original untyped payload for forward compatibility
	// with fields this client version does not model.
	Raw map[string]any `json:"-"`
}

// Signals is the open bundle of structured facts attached to an [Item].
//
// Each recognized signal kind appears at most once; unrecognized kinds the
// server may add in the future are preserved untyped in Extra rather than
// rejected, so additive server-side changes never break decoding.
type Signals struct {
	// Severity is present when the item carries a vulnerability severity.
	Severity *SeveritySignal `json:"severity,omitempty"`

	// Release is present when the item announces a release.
	Release *ReleaseSignal `json:"release,omitempty"`

	// Incident is present when the item reports a service incident.
	Incident *IncidentSignal `json:"incident,omitempty"`

	// Deprecation is present when the item announces a deprecation.
	Deprecation *DeprecationSignal `json:"deprecation,omitempty"`

	// SuggestedAction is the service-derived action code for this item.
	// [Item.SuggestedAction] is a convenience projection of this field.
	SuggestedAction string `json:"suggested_action,omitempty"`

	// Extra holds signal kinds this client version does not recognize,
	// keyed by kind name, values untyped.
	Extra map[string]any `json:"-"`
}

// SeveritySignal describes a vulnerability severity extracted from an item.
type SeveritySignal struct {
	// Level is the severity level (e.g., "critical", "high", "moderate").
	Level string `json:"level"`

	// CVSS is the CVSS base score. Nil when not provided.
	CVSS *float64 `json:"cvss"`

	// CWEs lists associated CWE identifiers.
	CWEs []string `json:"cwes,omitempty"`

	// Packages lists affected package names.
	Packages []string `json:"packages,omitempty"`

	// Exploited reports whether exploitation in the wild is known.
	Exploited bool `json:"exploited"`

	// Provenance carries extraction metadata.
	Provenance map[string]any `json:"provenance,omitempty"`
}

// ReleaseSignal describes a software release extracted from an item.
type ReleaseSignal struct {
	// Version is the released version string.
	Version string `json:"version"`

	// Prerelease reports whether the release is a prerelease.
	Prerelease bool `json:"prerelease"`

	// SecurityPatch reports whether the release contains security fixes.
	SecurityPatch bool `json:"security_patch"`

	// Provenance carries extraction metadata.
	Provenance map[string]any `json:"provenance,omitempty"`
}

// IncidentSignal describes a service incident extracted from an item.
type IncidentSignal struct {
	// Status is the incident status (e.g., "investigating", "resolved").
	Status string `json:"status"`

	// Impact is the service-reported impact level, empty when unknown.
	Impact string `json:"impact,omitempty"`

	// Provenance carries extraction metadata.
	Provenance map[string]any `json:"provenance,omitempty"`
}

// DeprecationSignal describes a deprecation notice extracted from an item.
type DeprecationSignal struct {
	// Type is the deprecation kind (e.g., "api", "model", "endpoint").
	Type string `json:"type"`

	// Affected lists the deprecated identifiers.
	Affected []string `json:"affected,omitempty"`

	// Confidence is the extractor's confidence in [0, 1].
	Confidence float64 `json:"confidence"`

	// Source names the heuristic or document the notice was derived from.
	Source string `json:"source,omitempty"`

	// Provenance carries extraction metadata.
	Provenance map[string]any `json:"provenance,omitempty"`
}

// SourceInfo is static metadata about one upstream source monitored by the
// service. The client uses it to build the source→tags lookup behind
// [WithTags] filtering; it is cached once per client instance and not
// refreshed automatically.
type SourceInfo struct {
	// ID is the source's stable identifier.
	ID string `json:"id"`

	// Name is the source's display name.
	Name string `json:"name"`

	// Tags lists the source's classification tags (e.g., "security",
	// "llm-provider").
	Tags []string `json:"tags,omitempty"`

	// Description is a short human-readable description.
	Description string `json:"description,omitempty"`

	// Homepage is the source's homepage URL.
	Homepage string `json:"homepage,omitempty"`

	// Enabled reports whether the service currently monitors this source.
	Enabled bool `json:"enabled"`

	// Health is the source's last-known health status string.
	Health string `json:"health,omitempty"`

	// HeadURL is the source's per-source head document URL.
	HeadURL string `json:"head_url,omitempty"`

	// LatestURL is the source's per-source feed document URL.
	LatestURL string `json:"latest_url,omitempty"`
}

// HealthCheck is the pipeline-wide liveness document served at
// /healthz.json.
type HealthCheck struct {
	// OK reports whether the service considers itself healthy.
	OK bool `json:"ok"`

	// Service is the service's name.
	Service string `json:"service"`

	// CheckedAt is when the health state was computed.
	CheckedAt time.Time `json:"checked_at"`

	// SourcesChecked is the number of sources examined in the last cycle.
	SourcesChecked int `json:"sources_checked"`

	// SourcesOK is the number of those sources that were healthy.
	SourcesOK int `json:"sources_ok"`

	// EngineVersion is the service's pipeline engine version.
	EngineVersion string `json:"engine_version"`
}
