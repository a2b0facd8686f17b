// File: internal/osv/normalize.go
package osv

import (
	"errors"
	"fmt"

	"github.com/xkilldash9x/cyberhealth-cli/api/schemas"
)

// Sentinel errors for caller contract violations in raw advisory input.
// A batch result without identity keys would corrupt scoring, so these fail
// the whole normalization rather than dropping the entry.
var (
	ErrMissingPackage = errors.New("advisory batch result is missing the package name")
	ErrMissingVersion = errors.New("advisory batch result is missing the package version")
)

type pkgKey struct {
	name    string
	version string
}

// Flatten converts raw per-package batch results into a deduplicated, merged
// list of vulnerability findings, one per (package, version) pair, emitted in
// first-seen order.
//
// Advisory IDs are suppressed globally for the run: an ID seen once is never
// emitted again, even attached to a different package later in the batch.
// That makes normalization idempotent when the same result appears twice, at
// the cost of attributing an advisory shared by two packages only to the
// first one encountered. Callers that need per-package attribution must
// query the packages in separate runs.
func Flatten(results []BatchResult) ([]schemas.VulnFinding, error) {
	seenIDs := make(map[string]struct{})
	merged := make(map[pkgKey]*schemas.VulnFinding)
	var order []pkgKey

	for i, r := range results {
		if r.Name == "" {
			return nil, fmt.Errorf("batch result %d: %w", i, ErrMissingPackage)
		}
		if r.Version == "" {
			return nil, fmt.Errorf("batch result %d (%s): %w", i, r.Name, ErrMissingVersion)
		}

		for _, adv := range r.Vulns {
			if _, dup := seenIDs[adv.ID]; dup {
				continue
			}
			seenIDs[adv.ID] = struct{}{}

			k := pkgKey{name: r.Name, version: r.Version}
			if f, ok := merged[k]; ok {
				// Later advisories for a known pair contribute only their ID;
				// summary, aliases and fix hint stay with the first record.
				f.AdvisoryIDs = append(f.AdvisoryIDs, adv.ID)
				continue
			}

			merged[k] = &schemas.VulnFinding{
				Package:         r.Name,
				Version:         r.Version,
				AdvisoryIDs:     []string{adv.ID},
				Aliases:         adv.Aliases,
				Summary:         adv.Summary,
				SeveritySignals: adv.Severity,
				FixedHint:       fixedHint(adv),
			}
			order = append(order, k)
		}
	}

	findings := make([]schemas.VulnFinding, 0, len(order))
	for _, k := range order {
		findings = append(findings, *merged[k])
	}
	return findings, nil
}

// fixedHint scans the advisory's affected ranges in encounter order and
// formats the first fix-event version as an upgrade hint. Advisories without
// a fix event yield an empty hint.
func fixedHint(adv Advisory) string {
	for _, aff := range adv.Affected {
		for _, rng := range aff.Ranges {
			for _, ev := range rng.Events {
				if ev.Fixed != "" {
					return fmt.Sprintf("upgrade to ≥ %s", ev.Fixed)
				}
			}
		}
	}
	return ""
}
