// File: internal/manifest/csproj.go
package manifest

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"
)

// ParseCsproj parses a .NET SDK-style project file. PackageReference
// elements carry the version either in a Version attribute or a child
// element; floating versions (containing '*') and missing versions count
// as unpinned.
func ParseCsproj(data []byte) (Result, error) {
	res := Result{Format: FormatCsproj}

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return res, fmt.Errorf("parsing csproj: %w", err)
	}

	for _, ref := range doc.FindElements("//PackageReference") {
		name := ref.SelectAttrValue("Include", "")
		if name == "" {
			continue
		}

		ver := ref.SelectAttrValue("Version", "")
		if ver == "" {
			if child := ref.SelectElement("Version"); child != nil {
				ver = strings.TrimSpace(child.Text())
			}
		}

		if ver == "" || strings.Contains(ver, "*") {
			res.Unpinned = true
			continue
		}
		res.Deps = append(res.Deps, Dependency{Name: name, Version: ver})
	}

	return res, nil
}
