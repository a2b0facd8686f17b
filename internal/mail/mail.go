// File: internal/mail/mail.go

// Package mail delivers a finished report to the user over SMTP with
// STARTTLS. Delivery failures are reported to the caller but never fail the
// scan that produced the report.
package mail

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"mime/multipart"
	"net/smtp"
	"net/textproto"

	"go.uber.org/zap"

	"github.com/xkilldash9x/cyberhealth-cli/internal/config"
)

// Mailer sends report emails through a single configured SMTP account.
type Mailer struct {
	cfg    config.EmailConfig
	logger *zap.Logger
}

func NewMailer(cfg config.EmailConfig, logger *zap.Logger) *Mailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Mailer{cfg: cfg, logger: logger}
}

// Send delivers the report as an attachment with a short plain-text body.
func (m *Mailer) Send(to, subject, filename string, report []byte) error {
	if m.cfg.Sender == "" || m.cfg.Password == "" {
		return fmt.Errorf("email sender credentials not configured")
	}

	msg, err := m.buildMessage(to, subject, filename, report)
	if err != nil {
		return err
	}

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	auth := smtp.PlainAuth("", m.cfg.Sender, m.cfg.Password, m.cfg.Host)

	// smtp.SendMail negotiates STARTTLS when the server advertises it.
	if err := smtp.SendMail(addr, auth, m.cfg.Sender, []string{to}, msg); err != nil {
		return fmt.Errorf("sending report email: %w", err)
	}

	m.logger.Info("Report emailed", zap.String("to", to), zap.String("attachment", filename))
	return nil
}

func (m *Mailer) buildMessage(to, subject, filename string, report []byte) ([]byte, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	fmt.Fprintf(&buf, "From: %s\r\n", m.cfg.Sender)
	fmt.Fprintf(&buf, "To: %s\r\n", to)
	fmt.Fprintf(&buf, "Subject: %s\r\n", subject)
	buf.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/mixed; boundary=%q\r\n\r\n", writer.Boundary())

	body, err := writer.CreatePart(textproto.MIMEHeader{
		"Content-Type": {"text/plain; charset=utf-8"},
	})
	if err != nil {
		return nil, fmt.Errorf("building message body: %w", err)
	}
	fmt.Fprintf(body, "Please find attached your Cyber Health Report.\r\n")

	attachment, err := writer.CreatePart(textproto.MIMEHeader{
		"Content-Type":              {"application/octet-stream"},
		"Content-Transfer-Encoding": {"base64"},
		"Content-Disposition":       {fmt.Sprintf("attachment; filename=%q", filename)},
	})
	if err != nil {
		return nil, fmt.Errorf("building attachment: %w", err)
	}
	encoder := base64.NewEncoder(base64.StdEncoding, attachment)
	if _, err := encoder.Write(report); err != nil {
		return nil, fmt.Errorf("encoding attachment: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return nil, fmt.Errorf("encoding attachment: %w", err)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("finalizing message: %w", err)
	}
	return buf.Bytes(), nil
}
