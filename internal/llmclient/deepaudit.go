// File: internal/llmclient/deepaudit.go

// Package llmclient runs the optional Gemini deep audit over extracted
// project files. The audit is advisory text appended to the report; it never
// influences the health score and its failure never fails a scan.
package llmclient

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/xkilldash9x/cyberhealth-cli/internal/archive"
	"github.com/xkilldash9x/cyberhealth-cli/internal/config"
)

const promptHeader = `You are a cybersecurity auditor.
Analyze these files for:
- Hardcoded secrets or credentials
- Unsafe configuration (DEBUG=True, open CORS)
- Misplaced .env files
- Weak passwords or tokens
Provide a summary and one-line fixes.

Files:
`

// ErrNotConfigured is returned when the audit is requested without an API key.
var ErrNotConfigured = errors.New("deep audit requires an API key")

// Auditor submits project files to Gemini for a free-form security review.
type Auditor struct {
	cfg    config.AIConfig
	logger *zap.Logger
}

func NewAuditor(cfg config.AIConfig, logger *zap.Logger) *Auditor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Auditor{cfg: cfg, logger: logger}
}

// Audit sends the prompt built from the files and returns the model's
// analysis text.
func (a *Auditor) Audit(ctx context.Context, files []archive.File) (string, error) {
	if a.cfg.APIKey == "" {
		return "", ErrNotConfigured
	}

	prompt := a.buildPrompt(files)
	if prompt == "" {
		return "", errors.New("no text files to audit")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  a.cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return "", fmt.Errorf("creating genai client: %w", err)
	}

	a.logger.Info("Running deep audit", zap.String("model", a.cfg.Model), zap.Int("files", len(files)))

	resp, err := client.Models.GenerateContent(ctx, a.cfg.Model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("generating audit: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", errors.New("model returned an empty response")
	}
	return text, nil
}

// buildPrompt concatenates file contents under per-file headers, bounded by
// the configured file count and per-file size so the request stays inside
// the model's context window.
func (a *Auditor) buildPrompt(files []archive.File) string {
	maxFiles := a.cfg.MaxFiles
	if maxFiles <= 0 {
		maxFiles = 10
	}
	maxBytes := a.cfg.MaxFileBytes
	if maxBytes <= 0 {
		maxBytes = 200_000
	}

	var sections []string
	for _, f := range files {
		if len(sections) == maxFiles {
			break
		}
		if len(f.Data) >= maxBytes || !utf8.Valid(f.Data) {
			continue
		}
		sections = append(sections, fmt.Sprintf("### File: %s\n%s", f.Path, f.Data))
	}

	if len(sections) == 0 {
		return ""
	}
	return promptHeader + strings.Join(sections, "\n\n")
}
