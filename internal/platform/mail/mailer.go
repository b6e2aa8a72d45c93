// Package mail provides outbound email delivery for account flows.
package mail

import (
	"fmt"
	"log/slog"

	gomail "github.com/go-mail/mail"
)

// Sender delivers account-related email. It is a capability interface:
// the real SMTP implementation is selected at startup when SMTP is
// configured, otherwise the log-only implementation is used.
type Sender interface {
	// SendPasswordReset sends a password reset link to the given address.
	SendPasswordReset(to, resetURL string) error
}

// SMTPSender implements Sender over SMTP.
type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPSender creates a Sender that delivers through the given SMTP host.
func NewSMTPSender(host string, port int, username, password, from string) *SMTPSender {
	return &SMTPSender{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
	}
}

// SendPasswordReset sends the password reset email.
func (s *SMTPSender) SendPasswordReset(to, resetURL string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", "Reset your password")
	m.SetBody("text/plain", fmt.Sprintf(
		"A password reset was requested for your account.\n\n"+
			"Open the link below to choose a new password. The link expires soon and can be used once.\n\n%s\n\n"+
			"If you did not request this, you can ignore this email.\n", resetURL))
	m.AddAlternative("text/html", fmt.Sprintf(
		"<p>A password reset was requested for your account.</p>"+
			"<p><a href=%q>Reset your password</a></p>"+
			"<p>The link expires soon and can be used once. If you did not request this, you can ignore this email.</p>", resetURL))

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send reset email: %w", err)
	}
	return nil
}

// LogSender is the no-op fallback used when SMTP is not configured.
// It logs instead of sending, so local development still surfaces the link.
type LogSender struct{}

// NewLogSender creates a LogSender.
func NewLogSender() *LogSender {
	return &LogSender{}
}

// SendPasswordReset logs the reset link instead of emailing it.
func (s *LogSender) SendPasswordReset(to, resetURL string) error {
	slog.Info("smtp not configured, logging reset link instead", "to", to, "url", resetURL)
	return nil
}
