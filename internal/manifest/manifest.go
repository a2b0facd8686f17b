// File: internal/manifest/manifest.go

// Package manifest parses dependency manifests into (name, version) pairs
// suitable for advisory lookup. Only pinned versions are returned; ranges
// and wildcards cannot be queried meaningfully and are surfaced through the
// Unpinned flag instead.
package manifest

import (
	"fmt"
	"path"
	"strings"
)

// Format identifies a supported manifest format.
type Format string

const (
	FormatRequirements Format = "requirements" // pip requirements.txt / .in
	FormatPackageJSON  Format = "package.json" // npm package.json
	FormatCsproj       Format = "csproj"       // .NET SDK-style project file
)

// Ecosystem returns the OSV ecosystem name for the format.
func (f Format) Ecosystem() string {
	switch f {
	case FormatRequirements:
		return "PyPI"
	case FormatPackageJSON:
		return "npm"
	case FormatCsproj:
		return "NuGet"
	default:
		return ""
	}
}

// Dependency is one parsed manifest entry with a pinned version.
type Dependency struct {
	Name    string
	Version string
}

// Result is the outcome of parsing one manifest.
type Result struct {
	Format Format
	Deps   []Dependency
	// Unpinned reports that the manifest contained at least one entry
	// without an exact version. Those entries are not queryable; callers
	// should warn and suggest an archive scan instead.
	Unpinned bool
}

// Detect maps a manifest filename to its format.
func Detect(filename string) (Format, bool) {
	base := strings.ToLower(path.Base(filename))
	switch {
	case base == "package.json":
		return FormatPackageJSON, true
	case strings.HasSuffix(base, ".csproj"):
		return FormatCsproj, true
	case strings.HasSuffix(base, ".txt") || strings.HasSuffix(base, ".in"):
		return FormatRequirements, true
	default:
		return "", false
	}
}

// Parse detects the format from the filename and parses the content.
func Parse(filename string, data []byte) (Result, error) {
	format, ok := Detect(filename)
	if !ok {
		return Result{}, fmt.Errorf("unsupported manifest file: %s", path.Base(filename))
	}

	switch format {
	case FormatPackageJSON:
		return ParsePackageJSON(data)
	case FormatCsproj:
		return ParseCsproj(data)
	default:
		return ParseRequirements(string(data)), nil
	}
}
