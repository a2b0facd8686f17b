// File: internal/reporting/json.go
package reporting

import (
	"fmt"
	"io"

	jsoniter "github.com/json-iterator/go"

	"github.com/xkilldash9x/cyberhealth-cli/api/schemas"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// JSONReporter writes the full report envelope as indented JSON.
type JSONReporter struct {
	writer io.WriteCloser
}

func NewJSONReporter(writer io.WriteCloser) *JSONReporter {
	return &JSONReporter{writer: writer}
}

func (r *JSONReporter) Write(envelope *schemas.ReportEnvelope) error {
	encoder := json.NewEncoder(r.writer)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(envelope); err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	return nil
}

func (r *JSONReporter) Close() error {
	return r.writer.Close()
}
