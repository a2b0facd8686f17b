package configrules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/cyberhealth-cli/api/schemas"
)

// Test Cases: Scan

func TestScan_DebugMode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		line string
		hit  bool
	}{
		{"PythonTrue", "DEBUG = True", true},
		{"LowercaseOne", "debug=1", true},
		{"DisabledFalse", "DEBUG = False", false},
		{"DisabledZero", "debug = 0", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			findings := Scan("settings.py", tc.line)
			if tc.hit {
				require.Len(t, findings, 1)
				assert.Equal(t, "DEBUG_MODE", findings[0].RuleID)
				assert.Equal(t, schemas.SeverityHigh, findings[0].Severity)
			} else {
				assert.Empty(t, findings)
			}
		})
	}
}

func TestScan_OpenHosts(t *testing.T) {
	t.Parallel()

	findings := Scan("settings.py", `ALLOWED_HOSTS = ["*"]`)
	require.Len(t, findings, 1)
	assert.Equal(t, "OPEN_HOSTS", findings[0].RuleID)
	assert.Equal(t, schemas.SeverityMedium, findings[0].Severity)
	assert.Equal(t, []string{"OWASP A01/A05", "CWE-16 Configuration"}, findings[0].References)
}

func TestScan_HardcodedSecret(t *testing.T) {
	t.Parallel()

	findings := Scan("app.py", `API_KEY = "sk_live_abcdef123456"`)
	require.Len(t, findings, 1)
	assert.Equal(t, "HARDCODED_SECRET", findings[0].RuleID)
	assert.Equal(t, schemas.SeverityCritical, findings[0].Severity)
	assert.Contains(t, findings[0].Fix, ".env")
}

func TestScan_MultipleRulesFire(t *testing.T) {
	t.Parallel()

	text := `DEBUG = True
ALLOWED_HOSTS = ['*']
SECRET_KEY = "supersecretvalue42"
`
	findings := Scan("settings.py", text)

	ids := make([]string, len(findings))
	for i, f := range findings {
		ids[i] = f.RuleID
	}
	assert.ElementsMatch(t, []string{"DEBUG_MODE", "OPEN_HOSTS", "HARDCODED_SECRET"}, ids)
}

// Each finding carries its rule's reference list as-is; rendering decides
// how to join them.
func TestScan_FindingsCarryRuleReferences(t *testing.T) {
	t.Parallel()

	for _, rule := range rules {
		assert.NotEmpty(t, rule.Refs, rule.ID)
	}

	findings := Scan("settings.py", "DEBUG = True")
	require.Len(t, findings, 1)
	assert.Equal(t, []string{"OWASP A05: Security Misconfiguration"}, findings[0].References)
}

func TestScan_Clean(t *testing.T) {
	t.Parallel()

	assert.Empty(t, Scan("main.py", "def handler(event):\n    return event\n"))
}
