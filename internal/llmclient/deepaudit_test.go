package llmclient

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/cyberhealth-cli/internal/archive"
	"github.com/xkilldash9x/cyberhealth-cli/internal/config"
)

// Test Cases: Audit preconditions

func TestAudit_MissingAPIKey(t *testing.T) {
	t.Parallel()

	auditor := NewAuditor(config.AIConfig{Model: "gemini-2.0-flash"}, nil)
	_, err := auditor.Audit(context.Background(), []archive.File{{Path: "a.py", Data: []byte("x")}})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

// Test Cases: buildPrompt

func TestBuildPrompt_HeadersAndBounds(t *testing.T) {
	t.Parallel()

	auditor := NewAuditor(config.AIConfig{MaxFiles: 2, MaxFileBytes: 100}, nil)

	files := []archive.File{
		{Path: "app.py", Data: []byte("DEBUG = True")},
		{Path: "big.py", Data: []byte(strings.Repeat("x", 200))},
		{Path: "settings.py", Data: []byte("SECRET_KEY = 'abc'")},
		{Path: "extra.py", Data: []byte("pass")},
	}

	prompt := auditor.buildPrompt(files)
	require.NotEmpty(t, prompt)

	assert.True(t, strings.HasPrefix(prompt, "You are a cybersecurity auditor."))
	assert.Contains(t, prompt, "### File: app.py\nDEBUG = True")
	assert.Contains(t, prompt, "### File: settings.py")
	// Oversized file skipped without consuming a slot; file cap drops the rest.
	assert.NotContains(t, prompt, "big.py")
	assert.NotContains(t, prompt, "extra.py")
}

func TestBuildPrompt_SkipsBinaryContent(t *testing.T) {
	t.Parallel()

	auditor := NewAuditor(config.AIConfig{}, nil)
	prompt := auditor.buildPrompt([]archive.File{{Path: "blob.py", Data: []byte{0xff, 0xfe, 0x00}}})
	assert.Empty(t, prompt)
}

func TestBuildPrompt_NoFiles(t *testing.T) {
	t.Parallel()

	auditor := NewAuditor(config.AIConfig{}, nil)
	assert.Empty(t, auditor.buildPrompt(nil))
}
