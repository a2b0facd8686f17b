package schemas

import "time"

// -- Result Schemas --

// FindingDetails groups the classified findings of a scoring run by category.
type FindingDetails struct {
	Vulns   []VulnFinding   `json:"vulns"`
	Secrets []SecretFinding `json:"secrets"`
	Configs []ConfigFinding `json:"configs"`
}

// Empty reports whether the run produced no findings in any category.
func (d FindingDetails) Empty() bool {
	return len(d.Vulns) == 0 && len(d.Secrets) == 0 && len(d.Configs) == 0
}

// Count returns the total number of findings across all categories.
func (d FindingDetails) Count() int {
	return len(d.Vulns) + len(d.Secrets) + len(d.Configs)
}

// ScoreResult is the output of one scoring invocation. It is immutable once
// created and is consumed by the presentation and persistence layers.
type ScoreResult struct {
	// Score is the bounded Cyber Health Score in [0, 100]; 100 means no
	// findings, 0 means the raw point total reached or exceeded the clamp.
	Score int `json:"score"`

	// Points is the unclamped raw weighted point total.
	Points int `json:"points"`

	Details FindingDetails `json:"details"`
}

// ReportEnvelope is the top-level wrapper for everything a single scan run
// produced, handed to reporters, the mailer, and the store.
type ReportEnvelope struct {
	ScanID    string    `json:"scan_id"`
	Project   string    `json:"project"`
	Timestamp time.Time `json:"timestamp"`

	Result ScoreResult `json:"result"`

	// DeepAudit holds the opaque text produced by the AI deep audit, empty
	// when the audit was disabled or failed.
	DeepAudit string `json:"deep_audit,omitempty"`
}
