// ABOUTME: This file sends digest emails over SMTP
package mailer

import (
	"context"
	"fmt"
	"log/slog"
	"mime"
	"net/smtp"
	"strings"
)

// Config holds the SMTP account settings.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPMailer delivers HTML mail through a plain SMTP account.
type SMTPMailer struct {
	config Config
	logger *slog.Logger
}

// New creates a new SMTP mailer.
func New(config Config, logger *slog.Logger) *SMTPMailer {
	return &SMTPMailer{config: config, logger: logger}
}

// Send delivers one HTML email. The context only gates entry; net/smtp does
// not support cancellation mid-dialogue.
func (m *SMTPMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	addr := fmt.Sprintf("%s:%d", m.config.Host, m.config.Port)

	var auth smtp.Auth
	if m.config.Username != "" {
		auth = smtp.PlainAuth("", m.config.Username, m.config.Password, m.config.Host)
	}

	message := buildMessage(m.config.From, to, subject, htmlBody)
	if err := smtp.SendMail(addr, auth, m.config.From, []string{to}, message); err != nil {
		m.logger.ErrorContext(ctx, "smtp send failed", "to", to, "error", err)
		return fmt.Errorf("sending mail to %s: %w", to, err)
	}

	m.logger.InfoContext(ctx, "mail sent", "to", to, "subject", subject)

	return nil
}

func buildMessage(from, to, subject, htmlBody string) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + mime.QEncoding.Encode("utf-8", subject) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=utf-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(htmlBody)
	return []byte(b.String())
}
