package email

import (
	"context"
	"fmt"
	"log"
	"net/smtp"
	"strings"

	"github.com/Starlight373/Car-wash/internal/config"
)

// Sender defines the interface for sending notification emails (expiring
// membership summaries, low stock reports).
type Sender interface {
	Send(ctx context.Context, to []string, subject string, body []byte) error
}

// SMTPSender implements the Sender interface using Go's net/smtp package.
type SMTPSender struct {
	cfg  *config.Config
	auth smtp.Auth
	addr string
}

// NewSMTPSender creates a new SMTPSender. With no SMTP host configured it
// falls back to a logging sender so notification paths stay exercisable in
// development.
func NewSMTPSender(cfg *config.Config) Sender {
	if cfg.SmtpHost == "" {
		log.Println("SMTP host not configured, using logging email sender.")
		return &LoggingSender{cfg: cfg}
	}

	auth := smtp.PlainAuth(
		"", // identity
		cfg.SmtpUsername,
		cfg.SmtpPassword,
		cfg.SmtpHost,
	)
	addr := fmt.Sprintf("%s:%d", cfg.SmtpHost, cfg.SmtpPort)

	return &SMTPSender{
		cfg:  cfg,
		auth: auth,
		addr: addr,
	}
}

// Send delivers the message over SMTP.
func (s *SMTPSender) Send(ctx context.Context, to []string, subject string, body []byte) error {
	msg := buildMessage(s.cfg.SmtpFromAddress, to, subject, body)
	if err := smtp.SendMail(s.addr, s.auth, s.cfg.SmtpFromAddress, to, msg); err != nil {
		return fmt.Errorf("smtp error: %w", err)
	}
	return nil
}

// LoggingSender logs messages instead of sending them.
type LoggingSender struct {
	cfg *config.Config
}

// Send logs the message.
func (s *LoggingSender) Send(ctx context.Context, to []string, subject string, body []byte) error {
	log.Printf("EMAIL (not sent) to=%s subject=%q\n%s", strings.Join(to, ","), subject, body)
	return nil
}

func buildMessage(from string, to []string, subject string, body []byte) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + strings.Join(to, ", ") + "\r\n")
	b.WriteString("Subject: " + subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=\"utf-8\"\r\n\r\n")
	b.Write(body)
	return []byte(b.String())
}
