package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/wneessen/go-mail"
)

// Mailer is the outbound mail transport collaborator.
type Mailer interface {
	Send(ctx context.Context, subject, body string, recipients []string) error
}

// SMTPConfig holds the SMTP submission settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// LogMailer writes messages to the log instead of sending them. Used
// when no SMTP host is configured.
type LogMailer struct{}

// Send logs the message and reports success.
func (LogMailer) Send(_ context.Context, subject, _ string, recipients []string) error {
	slog.Info("mail transport disabled, logging instead of sending",
		"subject", subject,
		"recipients", recipients,
	)
	return nil
}

// SMTPMailer sends plain-text mail over SMTP using go-mail.
type SMTPMailer struct {
	cfg SMTPConfig
}

// NewSMTPMailer creates an SMTPMailer with the given configuration.
func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

// Send composes and delivers a single message to all recipients.
func (m *SMTPMailer) Send(ctx context.Context, subject, body string, recipients []string) error {
	msg := mail.NewMsg()
	if err := msg.From(m.cfg.From); err != nil {
		return fmt.Errorf("set sender address: %w", err)
	}
	if err := msg.To(recipients...); err != nil {
		return fmt.Errorf("set recipient addresses: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	opts := []mail.Option{
		mail.WithPort(m.cfg.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if m.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(m.cfg.Username),
			mail.WithPassword(m.cfg.Password),
		)
	}

	client, err := mail.NewClient(m.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("create SMTP client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}

	return nil
}
