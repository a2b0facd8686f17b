// File: internal/osv/types.go
package osv

import "github.com/xkilldash9x/cyberhealth-cli/api/schemas"

// Package identifies a package within an ecosystem, per the OSV API.
type Package struct {
	Name      string `json:"name"`
	Ecosystem string `json:"ecosystem"`
}

// Query is a single entry of a /v1/querybatch request.
type Query struct {
	Package Package `json:"package"`
	Version string  `json:"version"`
}

// QueryItem names one (package, version) pair to look up. The ecosystem is
// supplied by the client configuration.
type QueryItem struct {
	Name    string
	Version string
}

// Advisory is the subset of the OSV vulnerability schema the scanner
// consumes. Unknown fields in the upstream payload are ignored on decode;
// required identity fields are validated by the normalizer, not here.
type Advisory struct {
	ID       string                   `json:"id"`
	Aliases  []string                 `json:"aliases,omitempty"`
	Summary  string                   `json:"summary,omitempty"`
	Severity []schemas.SeveritySignal `json:"severity,omitempty"`
	Affected []Affected               `json:"affected,omitempty"`
}

// Affected describes one affected package entry of an advisory.
type Affected struct {
	Ranges []Range `json:"ranges,omitempty"`
}

// Range is a version range of an affected entry.
type Range struct {
	Type   string  `json:"type,omitempty"`
	Events []Event `json:"events,omitempty"`
}

// Event is a single version event within a range. At most one field is set
// per event; the normalizer only cares about Fixed.
type Event struct {
	Introduced   string `json:"introduced,omitempty"`
	Fixed        string `json:"fixed,omitempty"`
	LastAffected string `json:"last_affected,omitempty"`
}

// BatchResult pairs one query with the advisories returned for it, in the
// order the lookup returned them. Callers must preserve query order even when
// lookups complete out of order; the normalizer's first-seen semantics depend
// on it.
type BatchResult struct {
	Name    string     `json:"name"`
	Version string     `json:"version"`
	Vulns   []Advisory `json:"vulns"`
}

// -- wire types --

type batchRequest struct {
	Queries []Query `json:"queries"`
}

type batchResponse struct {
	Results []struct {
		Vulns []Advisory `json:"vulns"`
	} `json:"results"`
}

type queryResponse struct {
	Vulns []Advisory `json:"vulns"`
}
