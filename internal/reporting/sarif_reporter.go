// File: internal/reporting/sarif_reporter.go
package reporting

import (
	"fmt"
	"io"
	"regexp"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/xkilldash9x/cyberhealth-cli/api/schemas"
	"github.com/xkilldash9x/cyberhealth-cli/internal/observability"
	"github.com/xkilldash9x/cyberhealth-cli/internal/reporting/sarif"
)

// Tool identification for the SARIF report.
const (
	ToolName     = "Cyber Health CLI"
	ToolInfoURI  = "https://github.com/xkilldash9x/cyberhealth-cli"
	SARIFVersion = "2.1.0"
	SARIFSchema  = "https://schemastore.azurewebsites.net/schemas/json/sarif-2.1.0-rtm.5.json"
)

// ruleIDSanitizer strips characters not safe in SARIF rule IDs. Alphanumeric,
// underscore and dot survive; everything else collapses to a single hyphen.
var ruleIDSanitizer = regexp.MustCompile(`[^a-zA-Z0-9_.]+`)

// SARIFReporter implements the Reporter interface for the SARIF 2.1.0
// format. It is thread safe.
type SARIFReporter struct {
	writer io.WriteCloser
	logger *zap.Logger

	mu    sync.Mutex
	log   *sarif.Log
	rules map[string]bool
}

func NewSARIFReporter(writer io.WriteCloser, toolVersion string) *SARIFReporter {
	log := &sarif.Log{
		Version: SARIFVersion,
		Schema:  SARIFSchema,
		Runs: []*sarif.Run{
			{
				Tool: &sarif.Tool{
					Driver: &sarif.ToolComponent{
						Name:           ToolName,
						Version:        pString(toolVersion),
						InformationURI: pString(ToolInfoURI),
						Rules:          []*sarif.ReportingDescriptor{},
					},
				},
				Results: []*sarif.Result{},
			},
		},
	}

	return &SARIFReporter{
		writer: writer,
		logger: observability.GetLogger().Named("sarif_reporter"),
		log:    log,
		rules:  make(map[string]bool),
	}
}

// Write converts every finding in the envelope into a SARIF result.
func (r *SARIFReporter) Write(envelope *schemas.ReportEnvelope) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	run := r.log.Runs[0]
	details := envelope.Result.Details

	for _, v := range details.Vulns {
		ruleID := r.ensureRule(vulnRuleID(v), vulnRuleName(v), v.Summary, v.FixedHint)
		message := fmt.Sprintf("%s %s is affected by %s", v.Package, v.Version, strings.Join(v.AdvisoryIDs, ", "))
		run.Results = append(run.Results, r.result(ruleID, message, v.ResolvedSeverity, manifestURI(v)))
	}
	for _, s := range details.Secrets {
		ruleID := r.ensureRule("SECRET-"+sanitizeRuleName(s.Type), s.Type, s.Type+" committed to source", s.Fix)
		message := fmt.Sprintf("%s found in %s (%s)", s.Type, s.Path, s.Match)
		run.Results = append(run.Results, r.result(ruleID, message, s.ResolvedSeverity, s.Path))
	}
	for _, c := range details.Configs {
		ruleID := r.ensureRule("CONFIG-"+sanitizeRuleName(c.RuleID), c.RuleID, c.Description, c.Fix)
		message := fmt.Sprintf("%s (%s)", c.Description, c.Path)
		run.Results = append(run.Results, r.result(ruleID, message, c.ResolvedSeverity, c.Path))
	}

	r.logger.Debug("Buffered findings for SARIF output",
		zap.Int("findings_count", details.Count()),
		zap.String("scan_id", envelope.ScanID))

	return nil
}

// Close finalizes the SARIF log and writes it out.
func (r *SARIFReporter) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	encoder := json.NewEncoder(r.writer)
	encoder.SetIndent("", "  ")

	encodeErr := encoder.Encode(r.log)
	closeErr := r.writer.Close()

	if encodeErr != nil {
		r.logger.Error("Failed to encode SARIF log", zap.Error(encodeErr))
		return fmt.Errorf("failed to encode SARIF output: %w", encodeErr)
	}
	if closeErr != nil {
		return fmt.Errorf("failed to close output writer: %w", closeErr)
	}

	r.logger.Info("Wrote SARIF report",
		zap.Int("total_results", len(r.log.Runs[0].Results)),
		zap.Int("total_rules", len(r.log.Runs[0].Tool.Driver.Rules)))
	return nil
}

// ensureRule registers a rule definition once per rule ID.
// Must be called while holding the mutex.
func (r *SARIFReporter) ensureRule(ruleID, name, description, help string) string {
	if r.rules[ruleID] {
		return ruleID
	}
	r.rules[ruleID] = true

	if description == "" {
		description = name
	}

	driver := r.log.Runs[0].Tool.Driver
	driver.Rules = append(driver.Rules, &sarif.ReportingDescriptor{
		ID:               ruleID,
		Name:             pString(name),
		ShortDescription: &sarif.MultiformatMessageString{Text: pString(name)},
		FullDescription:  &sarif.MultiformatMessageString{Text: pString(description)},
		Help:             &sarif.MultiformatMessageString{Text: pString(help)},
		Properties: &sarif.PropertyBag{
			"tags":      []string{"security", "cyberhealth"},
			"precision": "high",
		},
	})
	return ruleID
}

func (r *SARIFReporter) result(ruleID, message string, severity schemas.Severity, uri string) *sarif.Result {
	return &sarif.Result{
		RuleID:  ruleID,
		Message: &sarif.Message{Text: pString(message)},
		Level:   severityToLevel(severity),
		Locations: []*sarif.Location{
			{
				PhysicalLocation: &sarif.PhysicalLocation{
					ArtifactLocation: &sarif.ArtifactLocation{URI: pString(uri)},
				},
			},
		},
	}
}

func vulnRuleID(v schemas.VulnFinding) string {
	if len(v.AdvisoryIDs) > 0 {
		return sanitizeRuleName(v.AdvisoryIDs[0])
	}
	return "VULN-" + sanitizeRuleName(v.Package)
}

func vulnRuleName(v schemas.VulnFinding) string {
	if len(v.AdvisoryIDs) > 0 {
		return v.AdvisoryIDs[0]
	}
	return "Vulnerable dependency: " + v.Package
}

// manifestURI names the dependency as the artifact; advisory findings have
// no file position inside the scanned project.
func manifestURI(v schemas.VulnFinding) string {
	return fmt.Sprintf("pkg:%s@%s", v.Package, v.Version)
}

func sanitizeRuleName(name string) string {
	if name == "" {
		return "UNNAMED"
	}
	sanitized := strings.Trim(ruleIDSanitizer.ReplaceAllString(strings.ToUpper(name), "-"), "-")
	if sanitized == "" {
		return "UNNAMED"
	}
	return sanitized
}

func severityToLevel(severity schemas.Severity) sarif.Level {
	switch severity {
	case schemas.SeverityCritical, schemas.SeverityHigh:
		return sarif.LevelError
	case schemas.SeverityMedium:
		return sarif.LevelWarning
	default:
		return sarif.LevelNote
	}
}

// pString returns a pointer to the given string value. Helper for optional
// SARIF fields.
func pString(s string) *string {
	return &s
}
