package notifier

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/smtp"

	"github.com/campushq/internship-portal/internal"
)

// Notifier delivers one-time codes to account holders.
type Notifier interface {
	SendOTP(ctx context.Context, email, subject, body string) error
}

// SMTPNotifier sends plain-text mail over SMTP with STARTTLS on the
// submission port. Delivery errors propagate to the caller: signup must not
// report success when the code never left the building.
type SMTPNotifier struct {
	cfg    internal.SMTPConfig
	logger *slog.Logger
}

func NewSMTPNotifier(cfg internal.SMTPConfig, logger *slog.Logger) *SMTPNotifier {
	return &SMTPNotifier{cfg: cfg, logger: logger}
}

func (n *SMTPNotifier) SendOTP(ctx context.Context, email, subject, body string) error {
	headers := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n",
		n.cfg.From, email, subject,
	)
	msg := []byte(headers + body + "\r\n")

	addr := net.JoinHostPort(n.cfg.Host, fmt.Sprintf("%d", n.cfg.Port))
	var auth smtp.Auth
	if n.cfg.Username != "" {
		auth = smtp.PlainAuth("", n.cfg.Username, n.cfg.Password, n.cfg.Host)
	}

	// smtp.SendMail blocks without a context, so the dial and the session run
	// under a deadline goroutine to honor cancellation.
	done := make(chan error, 1)
	go func() {
		done <- smtp.SendMail(addr, auth, n.cfg.From, []string{email}, msg)
	}()

	sendCtx := ctx
	if n.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		sendCtx, cancel = context.WithTimeout(ctx, n.cfg.Timeout)
		defer cancel()
	}

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("smtp send to %s: %w", email, err)
		}
		n.logger.Debug("OTP mail delivered", "to", email)
		return nil
	case <-sendCtx.Done():
		return fmt.Errorf("smtp send to %s: %w", email, sendCtx.Err())
	}
}
