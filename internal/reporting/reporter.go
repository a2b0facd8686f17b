// File: internal/reporting/reporter.go

// Package reporting renders a finished scan into its output format. The
// markdown report is the human-facing product; json and sarif exist for
// machine consumption and CI integration.
package reporting

import (
	"fmt"
	"io"
	"os"

	"github.com/xkilldash9x/cyberhealth-cli/api/schemas"
)

// Reporter writes one report envelope to an output.
type Reporter interface {
	// Write renders the envelope.
	Write(envelope *schemas.ReportEnvelope) error
	// Close finalizes the report and releases the underlying writer.
	Close() error
}

// nopWriteCloser wraps an io.Writer and provides a no-op Close method.
type nopWriteCloser struct {
	io.Writer
}

func (nwc *nopWriteCloser) Close() error {
	return nil
}

// New creates a reporter for the given format writing to outputPath.
// An empty path or "stdout" writes to standard output.
func New(format, outputPath, toolVersion string) (Reporter, error) {
	var writer io.WriteCloser
	isStdOut := outputPath == "" || outputPath == "stdout"

	if isStdOut {
		writer = &nopWriteCloser{os.Stdout}
	} else {
		f, err := os.Create(outputPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create output file %s: %w", outputPath, err)
		}
		writer = f
	}

	cleanup := func() {
		if !isStdOut {
			writer.Close()
		}
	}

	switch format {
	case "markdown", "":
		return NewMarkdownReporter(writer), nil
	case "json":
		return NewJSONReporter(writer), nil
	case "sarif":
		return NewSARIFReporter(writer, toolVersion), nil
	default:
		cleanup()
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}
