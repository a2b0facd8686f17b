// File: internal/reporting/markdown.go
package reporting

import (
	"fmt"
	"io"
	"strings"

	"github.com/xkilldash9x/cyberhealth-cli/api/schemas"
	"github.com/xkilldash9x/cyberhealth-cli/internal/results"
)

const reportHeader = `# Cyber Health Report

This quick scan highlights risky items that map to OWASP Top 10, NIST SSDF, and CWE categories.
Fix the items in the Safe Fix Checklist to improve your score and reduce risk of leaks or downtime.
`

// MarkdownReporter renders the human-facing report: score, one-line
// findings, a safe-fix checklist and the optional deep-audit text.
type MarkdownReporter struct {
	writer io.WriteCloser
}

func NewMarkdownReporter(writer io.WriteCloser) *MarkdownReporter {
	return &MarkdownReporter{writer: writer}
}

func (r *MarkdownReporter) Write(envelope *schemas.ReportEnvelope) error {
	var b strings.Builder

	b.WriteString(reportHeader)
	if envelope.Project != "" {
		fmt.Fprintf(&b, "\n**Project:** %s\n", envelope.Project)
	}
	fmt.Fprintf(&b, "\n**Cyber Health Score:** %d/100\n", envelope.Result.Score)

	b.WriteString("\n## Findings (Quick Read)\n")
	details := envelope.Result.Details
	if details.Empty() {
		b.WriteString("\n✅ No major issues found — your app looks secure!\n")
	} else {
		b.WriteString("\n")
		for _, line := range results.OneLiners(details) {
			fmt.Fprintf(&b, "- %s\n", line)
		}
	}

	if fixes := results.FixChecklist(details); len(fixes) > 0 {
		b.WriteString("\n## Safe Fix Checklist\n\n")
		for _, item := range fixes {
			fmt.Fprintf(&b, "- [ ] %s\n", item)
		}
	}

	if envelope.DeepAudit != "" {
		b.WriteString("\n## 🤖 Deep Audit Summary\n\n")
		b.WriteString(envelope.DeepAudit)
		b.WriteString("\n")
	}

	_, err := io.WriteString(r.writer, b.String())
	return err
}

func (r *MarkdownReporter) Close() error {
	return r.writer.Close()
}
