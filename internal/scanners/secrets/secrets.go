// File: internal/scanners/secrets/secrets.go

// Package secrets detects credentials committed to source text. Matches are
// masked before they leave the scanner; the raw secret never appears in a
// finding.
package secrets

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/xkilldash9x/cyberhealth-cli/api/schemas"
)

// Rule pairs a secret type with its detection pattern.
type Rule struct {
	Name    string
	Pattern *regexp.Regexp
}

// Detection rules, ordered roughly by specificity. Keep the patterns tight;
// a noisy secret scanner trains users to ignore it.
var rules = []Rule{
	{"AWS Access Key", regexp.MustCompile(`AKIA[0-9A-Z]{16}`)},
	{"AWS Secret Key", regexp.MustCompile(`(?i)aws(.{0,20})?(secret|sk|secret_access_key)\s*[:=]\s*['"]?[A-Za-z0-9/+=]{40}['"]?`)},
	{"Google API Key", regexp.MustCompile(`AIza[0-9A-Za-z\-_]{35}`)},
	{"Generic Bearer Token", regexp.MustCompile(`(?i)bearer\s+[A-Za-z0-9\-._~+/]+=*`)},
	{"Slack Token", regexp.MustCompile(`xox[baprs]-[A-Za-z0-9-]{10,48}`)},
	{"Private Key", regexp.MustCompile(`-----BEGIN (?:RSA|DSA|EC|OPENSSH) PRIVATE KEY-----`)},
	{"Password Hardcode", regexp.MustCompile(`(?i)password\s*[:=]\s*['"]?(admin123|12345|password|qwerty|letmein)['"]?`)},
}

var fixes = map[string]string{
	"Private Key":          "Remove the private key from the repo, rotate it, and store in a secret manager.",
	"AWS Access Key":       "Rotate the key, invalidate the old one, and move to environment variables or a secret manager.",
	"AWS Secret Key":       "Same as above; use IAM roles where possible.",
	"Google API Key":       "Regenerate the key, restrict by IP/referrer, and use environment variables or a secret manager.",
	"Generic Bearer Token": "Revoke the token and load it at runtime via environment variables.",
	"Slack Token":          "Regenerate and store securely; use a vault or secret manager.",
	"Password Hardcode":    "Use a strong unique password via an environment variable or password manager.",
}

const defaultFix = "Remove from source, rotate, and load via env/secret manager."

// Scan runs every rule against the text and returns masked findings.
// Private keys classify as critical, everything else as high.
func Scan(path string, text string) []schemas.SecretFinding {
	var findings []schemas.SecretFinding

	for _, rule := range rules {
		for _, match := range rule.Pattern.FindAllString(text, -1) {
			severity := schemas.SeverityHigh
			if strings.Contains(rule.Name, "Private Key") {
				severity = schemas.SeverityCritical
			}

			finding := schemas.SecretFinding{
				Type:     rule.Name,
				Path:     path,
				Match:    mask(match),
				Severity: severity,
				Fix:      fixFor(rule.Name),
			}
			if rule.Name == "Generic Bearer Token" {
				finding.Detail = jwtDetail(match)
			}
			findings = append(findings, finding)
		}
	}

	return findings
}

func fixFor(name string) string {
	if fix, ok := fixes[name]; ok {
		return fix
	}
	return defaultFix
}

// mask keeps the first 8 characters so a finding is recognizable without
// leaking the credential.
func mask(match string) string {
	runes := []rune(match)
	if len(runes) > 8 {
		runes = runes[:8]
	}
	return string(runes) + "…"
}

// jwtDetail decodes a bearer token that looks like a JWT and summarizes its
// claims. The signature is never verified; this only tells the user what the
// leaked token grants.
func jwtDetail(match string) string {
	fields := strings.Fields(match)
	if len(fields) < 2 {
		return ""
	}
	raw := fields[len(fields)-1]
	if strings.Count(raw, ".") != 2 {
		return ""
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return ""
	}

	var parts []string
	if iss, err := claims.GetIssuer(); err == nil && iss != "" {
		parts = append(parts, "iss="+iss)
	}
	if sub, err := claims.GetSubject(); err == nil && sub != "" {
		parts = append(parts, "sub="+sub)
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		parts = append(parts, "exp="+exp.UTC().Format("2006-01-02"))
	}

	if len(parts) == 0 {
		return "decodes as a JWT"
	}
	return fmt.Sprintf("decodes as a JWT (%s)", strings.Join(parts, ", "))
}
