// File: internal/results/score.go
package results

import (
	"math"

	"github.com/xkilldash9x/cyberhealth-cli/api/schemas"
)

// MaxBadPoints is the clamp applied to the raw weighted point total before
// normalization: this many points (or more) means a score of 0.
const MaxBadPoints = 60

// severityWeights maps each resolved severity to its point contribution.
// Every finding contributes independently; there are no per-category caps
// or interaction terms.
var severityWeights = map[schemas.Severity]int{
	schemas.SeverityCritical: 10,
	schemas.SeverityHigh:     7,
	schemas.SeverityMedium:   4,
	schemas.SeverityLow:      1,
}

// weightFor returns the point weight of a resolved severity. A finding that
// somehow reached scoring without a recognizable severity weighs as medium;
// a scoring run must always complete even with partially malformed input.
func weightFor(sev schemas.Severity) int {
	if w, ok := severityWeights[sev]; ok {
		return w
	}
	return severityWeights[schemas.SeverityMedium]
}

// Score computes the Cyber Health Score for a set of classified findings.
//
// It is a pure function of its input: deterministic, insensitive to the
// ordering of the finding lists, and monotonically non-increasing as
// findings are added. The raw point total is clamped at MaxBadPoints and
// normalized to [0, 100]; zero findings score 100. Rounding is
// half-away-from-zero (math.Round).
func Score(details schemas.FindingDetails) schemas.ScoreResult {
	points := 0
	for _, v := range details.Vulns {
		points += weightFor(v.ResolvedSeverity)
	}
	for _, s := range details.Secrets {
		points += weightFor(s.ResolvedSeverity)
	}
	for _, c := range details.Configs {
		points += weightFor(c.ResolvedSeverity)
	}

	clamped := points
	if clamped > MaxBadPoints {
		clamped = MaxBadPoints
	}
	score := int(math.Round(100 - float64(clamped)/float64(MaxBadPoints)*100))

	return schemas.ScoreResult{
		Score:   score,
		Points:  points,
		Details: details,
	}
}

// Process classifies raw findings from all three categories and scores them
// in one step. Nil category slices are normalized to empty ones so the
// result always carries all three lists.
func Process(vulns []schemas.VulnFinding, secrets []schemas.SecretFinding, configs []schemas.ConfigFinding) schemas.ScoreResult {
	if vulns == nil {
		vulns = []schemas.VulnFinding{}
	}
	if secrets == nil {
		secrets = []schemas.SecretFinding{}
	}
	if configs == nil {
		configs = []schemas.ConfigFinding{}
	}

	details := schemas.FindingDetails{Vulns: vulns, Secrets: secrets, Configs: configs}
	Classify(&details)
	return Score(details)
}
