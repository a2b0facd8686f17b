// File: internal/manifest/packagejson.go
package manifest

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type packageJSON struct {
	Dependencies    map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies"`
}

// ParsePackageJSON parses an npm package.json. Dependencies and
// devDependencies are merged; range specifiers (^, ~, >=, *, dist tags)
// count as unpinned. Output is sorted by name for deterministic ordering.
func ParsePackageJSON(data []byte) (Result, error) {
	res := Result{Format: FormatPackageJSON}

	var pkg packageJSON
	if err := json.Unmarshal(data, &pkg); err != nil {
		return res, fmt.Errorf("parsing package.json: %w", err)
	}

	merged := make(map[string]string, len(pkg.Dependencies)+len(pkg.DevDependencies))
	for name, ver := range pkg.Dependencies {
		merged[name] = ver
	}
	for name, ver := range pkg.DevDependencies {
		if _, ok := merged[name]; !ok {
			merged[name] = ver
		}
	}

	names := make([]string, 0, len(merged))
	for name := range merged {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		ver := strings.TrimSpace(merged[name])
		if !exactNpmVersion(ver) {
			res.Unpinned = true
			continue
		}
		res.Deps = append(res.Deps, Dependency{Name: name, Version: strings.TrimPrefix(ver, "=")})
	}

	return res, nil
}

// exactNpmVersion reports whether the specifier pins a single version.
// "1.2.3" and "=1.2.3" qualify; ranges, wildcards and dist tags do not.
func exactNpmVersion(ver string) bool {
	ver = strings.TrimPrefix(ver, "=")
	if ver == "" {
		return false
	}
	if !unicode.IsDigit(rune(ver[0])) {
		return false
	}
	return !strings.ContainsAny(ver, "*^~<> |")
}
