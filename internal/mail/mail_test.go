package mail

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/cyberhealth-cli/internal/config"
)

// Test Cases: Send preconditions

func TestSend_MissingCredentials(t *testing.T) {
	t.Parallel()

	mailer := NewMailer(config.EmailConfig{Host: "smtp.gmail.com", Port: 587}, nil)
	err := mailer.Send("user@example.com", "Report", "report.md", []byte("# Report"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "credentials not configured")
}

// Test Cases: buildMessage

func TestBuildMessage_Structure(t *testing.T) {
	t.Parallel()

	mailer := NewMailer(config.EmailConfig{
		Host: "smtp.gmail.com", Port: 587,
		Sender: "bot@example.com", Password: "app-password",
	}, nil)

	msg, err := mailer.buildMessage("user@example.com", "demo - Cyber Health Report", "demo_Report.md", []byte("# Cyber Health Report"))
	require.NoError(t, err)

	raw := string(msg)
	assert.Contains(t, raw, "From: bot@example.com\r\n")
	assert.Contains(t, raw, "To: user@example.com\r\n")
	assert.Contains(t, raw, "Subject: demo - Cyber Health Report\r\n")
	assert.Contains(t, raw, "multipart/mixed")
	assert.Contains(t, raw, "Please find attached your Cyber Health Report.")
	assert.Contains(t, raw, `attachment; filename="demo_Report.md"`)
	// Attachment is base64, the raw markdown must not appear verbatim.
	assert.NotContains(t, raw, "# Cyber Health Report\r\n\r\n--")
}
