// File: internal/manifest/requirements.go
package manifest

import (
	"bufio"
	"regexp"
	"strings"
)

// requirementPattern matches a pip requirement line. The version group only
// captures when an exact-ish specifier is present; anything else is an
// unpinned entry.
var requirementPattern = regexp.MustCompile(`^(?P<name>[A-Za-z0-9_.-]+)\s*(?:(?P<op>[=~!<>]{1,2})\s*(?P<ver>[A-Za-z0-9_.+-]+))?`)

// ParseRequirements parses pip requirements.txt content. Comment and blank
// lines are skipped. Entries pinned with == are returned; entries with no
// specifier or a range specifier set Unpinned and are dropped.
func ParseRequirements(content string) Result {
	res := Result{Format: FormatRequirements}

	scanner := bufio.NewScanner(strings.NewReader(content))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		// Options and includes are not package entries.
		if strings.HasPrefix(line, "-") {
			continue
		}

		m := requirementPattern.FindStringSubmatch(line)
		if m == nil || m[1] == "" {
			continue
		}
		name, op, ver := m[1], m[2], m[3]

		if op != "==" || ver == "" {
			res.Unpinned = true
			continue
		}
		res.Deps = append(res.Deps, Dependency{Name: name, Version: ver})
	}

	return res
}
