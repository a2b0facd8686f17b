package manifest

import (
	"strings"
	"testing"

	fuzz "github.com/AdaLogics/go-fuzz-headers"
)

// Parsers run on user-supplied files; none of them may panic, and every
// returned dependency must carry both a name and a version.

func FuzzParseRequirements(f *testing.F) {
	f.Add("flask==2.1.0\nrequests>=2.0\n# comment\n")
	f.Add("")
	f.Add("-r base.txt\nDjango == 3.2.12")

	f.Fuzz(func(t *testing.T, content string) {
		res := ParseRequirements(content)
		for _, dep := range res.Deps {
			if dep.Name == "" || dep.Version == "" {
				t.Fatalf("incomplete dependency from %q: %+v", content, dep)
			}
		}
	})
}

func FuzzParse(f *testing.F) {
	f.Fuzz(func(t *testing.T, data []byte) {
		fuzzConsumer := fuzz.NewConsumer(data)

		filename, err := fuzzConsumer.GetString()
		if err != nil {
			return
		}
		content, err := fuzzConsumer.GetBytes()
		if err != nil {
			return
		}

		res, err := Parse(filename, content)
		if err != nil {
			return
		}
		for _, dep := range res.Deps {
			if strings.TrimSpace(dep.Name) == "" || strings.TrimSpace(dep.Version) == "" {
				t.Fatalf("incomplete dependency from %q: %+v", filename, dep)
			}
		}
	})
}
