// File: internal/results/report.go
package results

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/xkilldash9x/cyberhealth-cli/api/schemas"
)

// versionPattern extracts a plain version number from an upgrade hint.
var versionPattern = regexp.MustCompile(`([0-9]+\.[0-9]+(?:\.[0-9]+)?)`)

// OneLiners renders one friendly summary line per finding, vulnerabilities
// first, then secrets, then configs, preserving each category's order.
func OneLiners(details schemas.FindingDetails) []string {
	lines := make([]string, 0, details.Count())

	for _, v := range details.Vulns {
		lines = append(lines, fmt.Sprintf("⚠️ %s %s is outdated — %s", v.Package, v.Version, vulnRemedy(v)))
	}
	for _, s := range details.Secrets {
		lines = append(lines, secretLine(s))
	}
	for _, c := range details.Configs {
		lines = append(lines, configLine(c))
	}
	return lines
}

// FixChecklist renders a deduplicated, order-preserving checklist of
// remediation actions. Secrets come first: a leaked credential is urgent in
// a way an outdated dependency is not.
func FixChecklist(details schemas.FindingDetails) []string {
	fixes := make([]string, 0, details.Count())

	for _, s := range details.Secrets {
		typ := strings.ToLower(s.Type)
		if strings.Contains(typ, "password") || strings.Contains(typ, "hardcode") {
			fixes = append(fixes, fmt.Sprintf("Change the weak password found in %s; store credentials in env vars or a password manager.", s.Path))
		} else {
			fixes = append(fixes, fmt.Sprintf("Rotate and remove secret: %s found in %s (store in secret manager).", s.Type, s.Path))
		}
	}
	for _, v := range details.Vulns {
		fixes = append(fixes, fmt.Sprintf("Upgrade %s %s — %s", v.Package, v.Version, vulnRemedy(v)))
	}
	for _, c := range details.Configs {
		fix := c.Fix
		if fix == "" {
			fix = "Fix configuration"
		}
		fixes = append(fixes, fmt.Sprintf("%s (%s)", fix, c.Path))
	}

	seen := make(map[string]struct{}, len(fixes))
	uniq := fixes[:0]
	for _, f := range fixes {
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		uniq = append(uniq, f)
	}
	return uniq
}

// vulnRemedy returns a short remedy like "upgrade to 2.3.2 or later.",
// falling back through the registry recommendation to a generic pointer at
// the advisory database.
func vulnRemedy(v schemas.VulnFinding) string {
	if v.FixedHint != "" {
		if m := versionPattern.FindString(v.FixedHint); m != "" {
			return fmt.Sprintf("upgrade to %s or later.", m)
		}
		return v.FixedHint
	}
	if v.RecommendedVersion != "" && v.RecommendedVersion != "latest" {
		return fmt.Sprintf("upgrade to %s or later.", v.RecommendedVersion)
	}
	return "upgrade to a non-vulnerable version (see OSV)."
}

func secretLine(s schemas.SecretFinding) string {
	typ := strings.ToLower(s.Type)
	switch {
	case strings.Contains(typ, "password") || strings.Contains(typ, "hardcode"):
		return fmt.Sprintf("🚨 Weak password detected in %s — change immediately.", s.Path)
	case strings.Contains(typ, "aws access key") || strings.Contains(typ, "aws secret"):
		return fmt.Sprintf("🔑 AWS credentials found in %s — rotate and move to a secret manager.", s.Path)
	case strings.Contains(typ, "private key"):
		return fmt.Sprintf("🔐 Private key detected in %s — remove from repo and rotate immediately.", s.Path)
	case strings.Contains(typ, "api key") || strings.Contains(typ, "bearer token") || strings.Contains(typ, "slack"):
		return fmt.Sprintf("🔑 API key/token found in %s — move it to a secure file or secret manager.", s.Path)
	default:
		return fmt.Sprintf("🔑 Secret pattern (%s) found in %s — remove and rotate.", s.Type, s.Path)
	}
}

func configLine(c schemas.ConfigFinding) string {
	id := strings.ToUpper(c.RuleID)
	desc := strings.ToUpper(c.Description)
	switch {
	case strings.Contains(id, "DEBUG") || strings.Contains(desc, "DEBUG"):
		return fmt.Sprintf("🛠️ Debug mode enabled in %s — disable in production (DEBUG=False).", c.Path)
	case strings.Contains(id, "OPEN_HOSTS") || strings.Contains(desc, "ALLOWED_HOSTS"):
		return fmt.Sprintf("🛠️ Wildcard hosts/CORS in %s — specify exact hosts/origins.", c.Path)
	default:
		fix := c.Fix
		if fix == "" {
			fix = "Review and fix this configuration."
		}
		return fmt.Sprintf("🛠️ %s (%s) — %s", c.Description, c.Path, fix)
	}
}
