// File: internal/reporting/reporter_test.go
package reporting_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/cyberhealth-cli/api/schemas"
	"github.com/xkilldash9x/cyberhealth-cli/internal/reporting"
)

const testToolVersion = "v1.0.0-test"

func testEnvelope() *schemas.ReportEnvelope {
	return &schemas.ReportEnvelope{
		ScanID:    "scan-1",
		Project:   "demo",
		Timestamp: time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC),
		Result: schemas.ScoreResult{
			Score:  83,
			Points: 10,
			Details: schemas.FindingDetails{
				Vulns: []schemas.VulnFinding{{
					Package:          "flask",
					Version:          "2.1.0",
					AdvisoryIDs:      []string{"GHSA-m2qf-hxjv-5gpq"},
					Summary:          "Session cookie disclosure",
					FixedHint:        "upgrade to ≥ 2.3.2",
					ResolvedSeverity: schemas.SeverityHigh,
				}},
				Secrets: []schemas.SecretFinding{{
					Type:             "AWS Access Key",
					Path:             "conf/aws.py",
					Match:            "AKIAIOSF…",
					Severity:         schemas.SeverityHigh,
					Fix:              "Rotate the key.",
					ResolvedSeverity: schemas.SeverityHigh,
				}},
				Configs: []schemas.ConfigFinding{{
					RuleID:           "DEBUG_MODE",
					Path:             "app.py",
					Description:      "Debug mode enabled in production (e.g., Flask/Django).",
					Severity:         schemas.SeverityHigh,
					Fix:              "Set DEBUG=False in production and guard with environment variables.",
					ResolvedSeverity: schemas.SeverityHigh,
				}},
			},
		},
		DeepAudit: "The project hardcodes credentials in conf/aws.py.",
	}
}

// Test Cases: New

func TestNew_StdoutVariants(t *testing.T) {
	for _, format := range []string{"markdown", "json", "sarif", ""} {
		r, err := reporting.New(format, "stdout", testToolVersion)
		require.NoError(t, err, format)
		assert.NotNil(t, r)
		assert.NoError(t, r.Close())
	}
}

func TestNew_UnsupportedFormat(t *testing.T) {
	_, err := reporting.New("pdf", "", testToolVersion)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported output format")
}

func TestNew_UnwritablePath(t *testing.T) {
	_, err := reporting.New("markdown", filepath.Join(t.TempDir(), "missing", "out.md"), testToolVersion)
	assert.Error(t, err)
}

// Test Cases: markdown output

func TestMarkdownReporter_FullReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.md")
	r, err := reporting.New("markdown", path, testToolVersion)
	require.NoError(t, err)

	require.NoError(t, r.Write(testEnvelope()))
	require.NoError(t, r.Close())

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	report := string(content)

	assert.True(t, strings.HasPrefix(report, "# Cyber Health Report"))
	assert.Contains(t, report, "**Project:** demo")
	assert.Contains(t, report, "**Cyber Health Score:** 83/100")
	assert.Contains(t, report, "## Findings (Quick Read)")
	assert.Contains(t, report, "- ⚠️ flask 2.1.0 is outdated — upgrade to 2.3.2 or later.")
	assert.Contains(t, report, "## Safe Fix Checklist")
	assert.Contains(t, report, "- [ ] Rotate and remove secret: AWS Access Key found in conf/aws.py")
	assert.Contains(t, report, "## 🤖 Deep Audit Summary")
	assert.Contains(t, report, "hardcodes credentials")
}

func TestMarkdownReporter_CleanScan(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.md")
	r, err := reporting.New("markdown", path, testToolVersion)
	require.NoError(t, err)

	envelope := &schemas.ReportEnvelope{Result: schemas.ScoreResult{Score: 100}}
	require.NoError(t, r.Write(envelope))
	require.NoError(t, r.Close())

	content, err := os.ReadFile(path)
	require.NoError(t, err)

	assert.Contains(t, string(content), "✅ No major issues found")
	// The intro paragraph always mentions the checklist by name; only the
	// section itself must be absent.
	assert.NotContains(t, string(content), "## Safe Fix Checklist")
	assert.NotContains(t, string(content), "Deep Audit")
}

// Test Cases: json output

func TestJSONReporter_Content(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	r, err := reporting.New("json", path, testToolVersion)
	require.NoError(t, err)

	require.NoError(t, r.Write(testEnvelope()))
	require.NoError(t, r.Close())

	content, err := os.ReadFile(path)
	require.NoError(t, err)

	assert.Contains(t, string(content), `"scan_id": "scan-1"`)
	assert.Contains(t, string(content), `"score": 83`)
	assert.Contains(t, string(content), `"deep_audit"`)
}
