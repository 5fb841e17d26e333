package notify

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"
)

// EmailConfig configures the SMTP channel.
type EmailConfig struct {
	Host     string
	Port     int
	User     string // empty = no auth
	Password string
	From     string
	Timeout  time.Duration // bound for the whole SMTP conversation
}

// Email sends plain-text expiry reminders to the secret owner's address
// over SMTP. STARTTLS is used when the server offers it.
type Email struct {
	cfg EmailConfig
}

// NewEmail creates the email channel.
func NewEmail(cfg EmailConfig) *Email {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Email{cfg: cfg}
}

func (e *Email) Name() string { return "email" }

func (e *Email) Send(ctx context.Context, n Notification) error {
	var to, subject, body string

	switch n.Event {
	case EventExpiryWarning:
		to = n.OwnerEmail
		subject = fmt.Sprintf("ExpiryGuard reminder: %s expires in %d days", n.SecretName, n.DaysRemaining)
		body = fmt.Sprintf(
			"Your secret '%s' will expire on %s (%d days remaining).\n\n"+
				"Please take necessary action to renew or update it.",
			n.SecretName,
			n.ExpiryDate.Format(dateLayout),
			n.DaysRemaining,
		)
	case EventTest:
		to = n.OwnerEmail
		subject = "ExpiryGuard: Test Email Notification"
		body = fmt.Sprintf(
			"This is a test email from ExpiryGuard.\n\n"+
				"If you received this email, your email configuration is working correctly!\n\n"+
				"Test sent at: %s",
			time.Now().UTC().Format(time.RFC3339),
		)
	case EventSummary:
		// Summaries go to chat channels only.
		return nil
	default:
		return fmt.Errorf("unknown event kind: %q", n.Event)
	}

	if to == "" {
		return fmt.Errorf("no recipient address")
	}
	return e.deliver(ctx, to, subject, body)
}

// deliver runs one bounded SMTP conversation. net/smtp has no context
// support, so the deadline is set on the connection itself.
func (e *Email) deliver(ctx context.Context, to, subject, body string) error {
	addr := net.JoinHostPort(e.cfg.Host, fmt.Sprintf("%d", e.cfg.Port))

	dialer := &net.Dialer{Timeout: e.cfg.Timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to dial smtp server: %w", err)
	}
	_ = conn.SetDeadline(time.Now().Add(e.cfg.Timeout))

	client, err := smtp.NewClient(conn, e.cfg.Host)
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("failed to start smtp session: %w", err)
	}
	defer func() {
		_ = client.Close()
	}()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: e.cfg.Host, MinVersion: tls.VersionTLS12}); err != nil {
			return fmt.Errorf("starttls failed: %w", err)
		}
	}

	if e.cfg.User != "" {
		auth := smtp.PlainAuth("", e.cfg.User, e.cfg.Password, e.cfg.Host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("smtp auth failed: %w", err)
		}
	}

	if err := client.Mail(e.cfg.From); err != nil {
		return fmt.Errorf("MAIL FROM rejected: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("RCPT TO rejected: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("DATA rejected: %w", err)
	}
	msg := strings.Join([]string{
		"From: " + e.cfg.From,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		`Content-Type: text/plain; charset="utf-8"`,
		"",
		body,
	}, "\r\n")
	if _, err := w.Write([]byte(msg)); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finish message: %w", err)
	}

	return client.Quit()
}
