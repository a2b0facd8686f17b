// File: api/schemas/schemas_test.go
package schemas_test

import (
	"testing"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/cyberhealth-cli/api/schemas"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// -- Severity Tests --

func TestSeverity_Known(t *testing.T) {
	t.Parallel()

	assert.True(t, schemas.SeverityCritical.Known())
	assert.True(t, schemas.SeverityHigh.Known())
	assert.True(t, schemas.SeverityMedium.Known())
	assert.True(t, schemas.SeverityLow.Known())

	assert.False(t, schemas.Severity("").Known())
	assert.False(t, schemas.Severity("CRITICAL").Known(), "levels are lowercase")
	assert.False(t, schemas.Severity("moderate").Known())
}

func TestSeverity_Rank(t *testing.T) {
	t.Parallel()

	// Ranks must strictly decrease from critical to unknown.
	assert.Greater(t, schemas.SeverityCritical.Rank(), schemas.SeverityHigh.Rank())
	assert.Greater(t, schemas.SeverityHigh.Rank(), schemas.SeverityMedium.Rank())
	assert.Greater(t, schemas.SeverityMedium.Rank(), schemas.SeverityLow.Rank())
	assert.Greater(t, schemas.SeverityLow.Rank(), schemas.Severity("bogus").Rank())
	assert.Equal(t, 0, schemas.Severity("").Rank())
}

// -- FindingDetails Tests --

func TestFindingDetails_EmptyAndCount(t *testing.T) {
	t.Parallel()

	var d schemas.FindingDetails
	assert.True(t, d.Empty())
	assert.Equal(t, 0, d.Count())

	d.Vulns = append(d.Vulns, schemas.VulnFinding{Package: "flask"})
	d.Secrets = append(d.Secrets, schemas.SecretFinding{Type: "AWS Access Key"})
	d.Configs = append(d.Configs, schemas.ConfigFinding{RuleID: "DEBUG_MODE"})

	assert.False(t, d.Empty())
	assert.Equal(t, 3, d.Count())
}

// -- Envelope Wire Format Tests --

// The envelope is consumed by the JSON reporter and the persistence layer, so
// its field names are part of the tool's external contract.
func TestReportEnvelope_WireFormat(t *testing.T) {
	t.Parallel()

	envelope := schemas.ReportEnvelope{
		ScanID:    "scan-1",
		Project:   "demo",
		Timestamp: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Result: schemas.ScoreResult{
			Score:  86,
			Points: 8,
			Details: schemas.FindingDetails{
				Vulns: []schemas.VulnFinding{{
					Package:          "flask",
					Version:          "2.1.0",
					AdvisoryIDs:      []string{"GHSA-m2qf-hxjv-5gpq"},
					SeveritySignals:  []schemas.SeveritySignal{{Type: "CVSS_V3", Score: "7.5"}},
					ResolvedSeverity: schemas.SeverityHigh,
				}},
			},
		},
		DeepAudit: "looks fine",
	}

	data, err := json.Marshal(envelope)
	require.NoError(t, err)

	body := string(data)
	assert.Contains(t, body, `"scan_id":"scan-1"`)
	assert.Contains(t, body, `"our_severity":"high"`)
	assert.Contains(t, body, `"ids":["GHSA-m2qf-hxjv-5gpq"]`)
	assert.Contains(t, body, `"deep_audit":"looks fine"`)

	var decoded schemas.ReportEnvelope
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, envelope.Result.Details.Vulns[0], decoded.Result.Details.Vulns[0])
	assert.True(t, envelope.Timestamp.Equal(decoded.Timestamp))
}

func TestReportEnvelope_OmitsEmptyDeepAudit(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(schemas.ReportEnvelope{ScanID: "scan-2"})
	require.NoError(t, err)
	assert.NotContains(t, string(data), "deep_audit")
}
