// File: internal/scanners/configrules/configrules.go

// Package configrules flags insecure configuration left in source files:
// debug switches, wildcard host lists and hardcoded credentials.
package configrules

import (
	"regexp"

	"github.com/xkilldash9x/cyberhealth-cli/api/schemas"
)

// Rule describes one misconfiguration check.
type Rule struct {
	ID          string
	Description string
	Pattern     *regexp.Regexp
	Severity    schemas.Severity
	Fix         string
	Refs        []string
}

var rules = []Rule{
	{
		ID:          "DEBUG_MODE",
		Description: "Debug mode enabled in production (e.g., Flask/Django).",
		Pattern:     regexp.MustCompile(`(?i)debug\s*=\s*(True|1)`),
		Severity:    schemas.SeverityHigh,
		Fix:         "Set DEBUG=False in production and guard with environment variables.",
		Refs:        []string{"OWASP A05: Security Misconfiguration"},
	},
	{
		ID:          "OPEN_HOSTS",
		Description: `Overly permissive ALLOWED_HOSTS / CORS settings ("*").`,
		Pattern:     regexp.MustCompile(`(?i)(allowed_hosts|cors_allowed_origins)[^\n]*\*`),
		Severity:    schemas.SeverityMedium,
		Fix:         "Specify exact hosts/origins; never use wildcard in production.",
		Refs:        []string{"OWASP A01/A05", "CWE-16 Configuration"},
	},
	{
		ID:          "HARDCODED_SECRET",
		Description: "Hardcoded secret, API key, or password found in code.",
		Pattern:     regexp.MustCompile(`(?i)(api[_\-]?key|secret[_\-]?key|token|password)\s*[:=]\s*['"]?[A-Za-z0-9_\-/=]{8,}['"]?`),
		Severity:    schemas.SeverityCritical,
		Fix:         "Move hardcoded credentials to a .env file and load securely with environment variables.",
		Refs:        []string{"OWASP A02: Cryptographic Failures", "CWE-798: Hardcoded Credentials"},
	},
}

// Scan returns one finding per rule match in the text.
func Scan(path string, text string) []schemas.ConfigFinding {
	var findings []schemas.ConfigFinding

	for _, rule := range rules {
		for range rule.Pattern.FindAllStringIndex(text, -1) {
			findings = append(findings, schemas.ConfigFinding{
				RuleID:      rule.ID,
				Path:        path,
				Description: rule.Description,
				Severity:    rule.Severity,
				Fix:         rule.Fix,
				References:  rule.Refs,
			})
		}
	}

	return findings
}
