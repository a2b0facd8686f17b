package results

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/xkilldash9x/cyberhealth-cli/api/schemas"
)

// Test Cases: severityFromSignals

func TestSeverityFromSignals_Thresholds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		score    string
		expected schemas.Severity
	}{
		{"CriticalBoundary", "9.0", schemas.SeverityCritical},
		{"CriticalHigh", "9.8", schemas.SeverityCritical},
		{"Ten", "10.0", schemas.SeverityCritical},
		{"HighBoundary", "7.0", schemas.SeverityHigh},
		{"JustBelowCritical", "8.9", schemas.SeverityHigh},
		{"MediumBoundary", "4.0", schemas.SeverityMedium},
		{"MediumMiddle", "5.0", schemas.SeverityMedium},
		{"JustBelowMedium", "3.9", schemas.SeverityLow},
		{"Zero", "0", schemas.SeverityLow},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := severityFromSignals([]schemas.SeveritySignal{{Type: "CVSS_V3", Score: tc.score}})
			assert.Equal(t, tc.expected, got)
		})
	}
}

// The first parseable signal wins; vector strings and other non-numeric
// signals are skipped.
func TestSeverityFromSignals_FirstParseableWins(t *testing.T) {
	t.Parallel()

	signals := []schemas.SeveritySignal{
		{Type: "CVSS_V3", Score: "CVSS:3.1/AV:N/AC:L/PR:N/UI:N/S:U/C:H/I:H/A:H"},
		{Type: "CVSS_V2", Score: "7.5"},
		{Type: "CVSS_V3", Score: "9.8"},
	}
	assert.Equal(t, schemas.SeverityHigh, severityFromSignals(signals))
}

// With no parseable numeric signal at all the classifier defaults to medium,
// never silently critical and never silently ignored.
func TestSeverityFromSignals_NoParseableDefaultsMedium(t *testing.T) {
	t.Parallel()

	assert.Equal(t, schemas.SeverityMedium, severityFromSignals(nil))
	assert.Equal(t, schemas.SeverityMedium, severityFromSignals([]schemas.SeveritySignal{}))
	assert.Equal(t, schemas.SeverityMedium, severityFromSignals([]schemas.SeveritySignal{
		{Type: "CVSS_V3", Score: "not-a-number"},
		{Type: "CVSS_V3", Score: ""},
	}))
}

func TestSeverityFromSignals_TrimsWhitespace(t *testing.T) {
	t.Parallel()

	got := severityFromSignals([]schemas.SeveritySignal{{Type: "CVSS_V3", Score: " 9.1 "}})
	assert.Equal(t, schemas.SeverityCritical, got)
}

// Test Cases: validateTag

func TestValidateTag(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		tag      schemas.Severity
		expected schemas.Severity
	}{
		{"Critical", schemas.SeverityCritical, schemas.SeverityCritical},
		{"High", schemas.SeverityHigh, schemas.SeverityHigh},
		{"Medium", schemas.SeverityMedium, schemas.SeverityMedium},
		{"Low", schemas.SeverityLow, schemas.SeverityLow},
		{"Absent", schemas.Severity(""), schemas.SeverityMedium},
		{"Unrecognized", schemas.Severity("urgent"), schemas.SeverityMedium},
		{"WrongCase", schemas.Severity("CRITICAL"), schemas.SeverityMedium},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.expected, validateTag(tc.tag))
		})
	}
}

// Test Cases: Classify

func TestClassify_AllCategoriesInPlace(t *testing.T) {
	t.Parallel()

	details := schemas.FindingDetails{
		Vulns: []schemas.VulnFinding{
			{Package: "a", Version: "1", SeveritySignals: []schemas.SeveritySignal{{Score: "9.8"}}},
			{Package: "b", Version: "2"},
		},
		Secrets: []schemas.SecretFinding{
			{Type: "Private Key", Severity: schemas.SeverityCritical},
			{Type: "Mystery", Severity: schemas.Severity("bogus")},
		},
		Configs: []schemas.ConfigFinding{
			{RuleID: "OPEN_HOSTS", Severity: schemas.SeverityMedium},
		},
	}

	Classify(&details)

	assert.Equal(t, schemas.SeverityCritical, details.Vulns[0].ResolvedSeverity)
	assert.Equal(t, schemas.SeverityMedium, details.Vulns[1].ResolvedSeverity)
	assert.Equal(t, schemas.SeverityCritical, details.Secrets[0].ResolvedSeverity)
	assert.Equal(t, schemas.SeverityMedium, details.Secrets[1].ResolvedSeverity)
	assert.Equal(t, schemas.SeverityMedium, details.Configs[0].ResolvedSeverity)
}
