package schemas

// -- Finding Schemas --

// Severity represents the severity level of a security finding. The values
// are lowercase to align with the OSV convention and the rule tables.
type Severity string

// Constants defining the standard severity levels for findings.
const (
	SeverityCritical Severity = "critical" // Represents a critical finding.
	SeverityHigh     Severity = "high"     // Represents a high-severity finding.
	SeverityMedium   Severity = "medium"   // Represents a medium-severity finding.
	SeverityLow      Severity = "low"      // Represents a low-severity finding.
)

// Known reports whether s is one of the four recognized severity levels.
func (s Severity) Known() bool {
	switch s {
	case SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow:
		return true
	}
	return false
}

// Rank returns an integer rank for ordering (critical=4 .. low=1, unknown=0).
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 4
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}

// SeveritySignal is a single raw severity entry as reported by an advisory
// source, e.g. {"type": "CVSS_V3", "score": "9.8"}. The score is kept as the
// string the source sent; interpretation happens in the classifier.
type SeveritySignal struct {
	Type  string `json:"type"`
	Score string `json:"score"`
}

// VulnFinding is a normalized, merged vulnerability finding for a single
// (package, version) pair. Multiple advisories affecting the same pair are
// merged into one finding with their IDs accumulated in encounter order.
type VulnFinding struct {
	Package string `json:"package"` // Affected package name.
	Version string `json:"version"` // Installed version that was queried.

	// AdvisoryIDs lists the merged advisory identifiers (OSV/CVE/GHSA) in
	// the order they were first seen, without duplicates.
	AdvisoryIDs []string `json:"ids"`

	Aliases []string `json:"aliases,omitempty"` // Alias identifiers of the first advisory.
	Summary string   `json:"summary"`           // Summary of the first advisory seen for the pair.

	// SeveritySignals carries the raw severity entries of the first advisory;
	// the classifier derives ResolvedSeverity from them.
	SeveritySignals []SeveritySignal `json:"severity,omitempty"`

	// FixedHint is a human-readable upgrade hint ("upgrade to >= 2.0.7")
	// derived from the first fix event found, empty when no fix is known.
	FixedHint string `json:"fixed_hint,omitempty"`

	// RecommendedVersion is the latest version published on the package
	// registry, or "latest" when the lookup was unavailable.
	RecommendedVersion string `json:"recommended_version,omitempty"`

	// ResolvedSeverity is assigned by the classifier; empty until classified.
	ResolvedSeverity Severity `json:"our_severity,omitempty"`
}

// SecretFinding is a single secret-pattern match occurrence. Matches are
// never deduplicated; every occurrence is reported.
type SecretFinding struct {
	Type string `json:"type"` // Pattern category, e.g. "AWS Access Key".
	Path string `json:"path"` // Archive path of the file containing the match.

	// Match holds a masked excerpt of the matched text. The full secret is
	// never stored or reported.
	Match string `json:"match"`

	Severity Severity `json:"severity"` // Pre-tagged by the rule table (critical or high).
	Fix      string   `json:"fix"`      // Remediation text for this pattern category.

	// Detail carries optional extra context, e.g. decoded JWT claims info.
	Detail string `json:"detail,omitempty"`

	// ResolvedSeverity is the validated severity assigned by the classifier.
	ResolvedSeverity Severity `json:"our_severity,omitempty"`
}

// ConfigFinding is a single misconfiguration-pattern match occurrence.
type ConfigFinding struct {
	RuleID      string   `json:"id"`            // Rule identifier, e.g. "DEBUG_MODE".
	Path        string   `json:"path"`          // Archive path of the file containing the match.
	Description string   `json:"desc"`          // What the rule detects.
	Severity    Severity `json:"severity"`      // Pre-tagged by the rule table.
	Fix         string   `json:"fix"`           // Remediation text.
	References  []string `json:"ref,omitempty"` // OWASP/CWE references.

	// ResolvedSeverity is the validated severity assigned by the classifier.
	ResolvedSeverity Severity `json:"our_severity,omitempty"`
}
