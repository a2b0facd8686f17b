// File: internal/results/classify.go
package results

import (
	"strconv"
	"strings"

	"github.com/xkilldash9x/cyberhealth-cli/api/schemas"
)

// Thresholds mapping a 0.0-10.0 CVSS-style score to an ordinal level.
const (
	criticalThreshold = 9.0
	highThreshold     = 7.0
	mediumThreshold   = 4.0
)

// Classify assigns a resolved severity to every finding in place, using the
// same four-level scale across all categories so scores stay comparable.
//
// Vulnerability findings are classified from their raw severity signals;
// secret and config findings arrive pre-tagged by the rule tables and only
// have their tag validated here.
func Classify(details *schemas.FindingDetails) {
	for i := range details.Vulns {
		details.Vulns[i].ResolvedSeverity = severityFromSignals(details.Vulns[i].SeveritySignals)
	}
	for i := range details.Secrets {
		details.Secrets[i].ResolvedSeverity = validateTag(details.Secrets[i].Severity)
	}
	for i := range details.Configs {
		details.Configs[i].ResolvedSeverity = validateTag(details.Configs[i].Severity)
	}
}

// severityFromSignals interprets the first numeric-form signal as a 0.0-10.0
// score: >=9.0 critical, >=7.0 high, >=4.0 medium, else low. Signals that do
// not parse as a number are skipped; with no parseable signal at all the
// result is medium, a conservative middle value rather than silently
// critical or silently ignored.
func severityFromSignals(signals []schemas.SeveritySignal) schemas.Severity {
	for _, sig := range signals {
		score, err := strconv.ParseFloat(strings.TrimSpace(sig.Score), 64)
		if err != nil {
			continue
		}
		switch {
		case score >= criticalThreshold:
			return schemas.SeverityCritical
		case score >= highThreshold:
			return schemas.SeverityHigh
		case score >= mediumThreshold:
			return schemas.SeverityMedium
		default:
			return schemas.SeverityLow
		}
	}
	return schemas.SeverityMedium
}

// validateTag passes a known severity tag through unchanged and defaults
// anything absent or unrecognized to medium. Upstream tags are produced by
// our own rule tables, so an unknown value means a partially malformed
// record, not an error worth aborting the run over.
func validateTag(tag schemas.Severity) schemas.Severity {
	if tag.Known() {
		return tag
	}
	return schemas.SeverityMedium
}
