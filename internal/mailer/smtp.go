package mailer

import (
	"context"
	"fmt"
	"net/smtp"

	"furliva/internal/config"

	"go.uber.org/zap"
)

// SMTPMailer delivers email over plain SMTP with AUTH PLAIN.
type SMTPMailer struct {
	cfg    config.SMTPConfig
	logger *zap.Logger
}

// NewSMTPMailer creates a mailer from the SMTP configuration
func NewSMTPMailer(cfg config.SMTPConfig, logger *zap.Logger) *SMTPMailer {
	return &SMTPMailer{cfg: cfg, logger: logger}
}

// Configured reports whether SMTP credentials are present. An unconfigured
// mailer is left out of the wiring so send paths become no-ops.
func (m *SMTPMailer) Configured() bool {
	return m.cfg.Username != "" && m.cfg.Password != "" && m.cfg.Host != ""
}

// Send delivers one HTML email
func (m *SMTPMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)

	from := m.cfg.From
	if from == "" {
		from = m.cfg.Username
	}

	headers := map[string]string{
		"From":         from,
		"To":           to,
		"Subject":      subject,
		"MIME-Version": "1.0",
		"Content-Type": `text/html; charset="utf-8"`,
	}

	var message string
	for k, v := range headers {
		message += fmt.Sprintf("%s: %s\r\n", k, v)
	}
	message += "\r\n" + htmlBody

	if err := smtp.SendMail(addr, auth, from, []string{to}, []byte(message)); err != nil {
		m.logger.Error("Failed to send email",
			zap.String("to", to),
			zap.String("subject", subject),
			zap.Error(err),
		)
		return fmt.Errorf("failed to send email: %w", err)
	}

	m.logger.Info("Email sent",
		zap.String("to", to),
		zap.String("subject", subject),
	)

	return nil
}
