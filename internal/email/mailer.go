package email

import (
	"bytes"
	"context"
	"fmt"
	"net/smtp"

	"go.uber.org/zap"
)

// Config carries the SMTP relay settings for transactional mail.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPMailer renders and sends the password-reset email over an
// authenticated SMTP relay.
type SMTPMailer struct {
	cfg Config
	log *zap.Logger
}

func NewSMTPMailer(cfg Config, log *zap.Logger) *SMTPMailer {
	return &SMTPMailer{cfg: cfg, log: log}
}

func (m *SMTPMailer) SendPasswordReset(_ context.Context, recipientEmail, resetLink string) error {
	body, err := RenderResetEmail(resetLink)
	if err != nil {
		return fmt.Errorf("render reset email: %w", err)
	}

	var msg bytes.Buffer
	fmt.Fprintf(&msg, "From: %s\r\n", m.cfg.From)
	fmt.Fprintf(&msg, "To: %s\r\n", recipientEmail)
	msg.WriteString("Subject: Reset Your Password\r\n")
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	msg.WriteString("\r\n")
	msg.Write(body)

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	if err := smtp.SendMail(addr, auth, m.cfg.From, []string{recipientEmail}, msg.Bytes()); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	m.log.Info("reset email sent", zap.String("to", recipientEmail))
	return nil
}

// LogMailer is the no-relay fallback: it logs the reset link instead of
// sending it, which keeps local development working without SMTP.
type LogMailer struct {
	log *zap.Logger
}

func NewLogMailer(log *zap.Logger) *LogMailer {
	return &LogMailer{log: log}
}

func (m *LogMailer) SendPasswordReset(_ context.Context, recipientEmail, resetLink string) error {
	m.log.Info("smtp not configured, reset link not mailed",
		zap.String("to", recipientEmail),
		zap.String("link", resetLink))
	return nil
}
