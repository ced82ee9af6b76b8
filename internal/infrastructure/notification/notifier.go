package notification

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"go.uber.org/zap"

	"github.com/leasehold/backend/internal/infrastructure/config"
)

// Message is a single outbound notification.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Notifier delivers notifications to tenants (payment receipts, overdue
// reminders, password resets).
type Notifier interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPNotifier sends notifications over SMTP with plain auth.
type SMTPNotifier struct {
	cfg    config.NotificationConfig
	logger *zap.Logger
}

// NewSMTPNotifier creates a new SMTP notifier
func NewSMTPNotifier(cfg config.NotificationConfig, logger *zap.Logger) (*SMTPNotifier, error) {
	if cfg.SMTPHost == "" {
		return nil, fmt.Errorf("smtp host is required")
	}
	if cfg.From == "" {
		return nil, fmt.Errorf("sender address is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SMTPNotifier{cfg: cfg, logger: logger}, nil
}

// Send delivers the message. The SMTP dial honors context cancellation only
// coarsely since net/smtp has no context support; callers should bound the
// call with their own timeout.
func (n *SMTPNotifier) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if msg.To == "" {
		return fmt.Errorf("recipient is required")
	}

	addr := fmt.Sprintf("%s:%d", n.cfg.SMTPHost, n.cfg.SMTPPort)

	var auth smtp.Auth
	if n.cfg.Username != "" {
		auth = smtp.PlainAuth("", n.cfg.Username, n.cfg.Password, n.cfg.SMTPHost)
	}

	payload := buildPayload(n.cfg.From, msg)
	if err := smtp.SendMail(addr, auth, n.cfg.From, []string{msg.To}, payload); err != nil {
		return fmt.Errorf("failed to send notification: %w", err)
	}

	n.logger.Debug("Notification sent",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
	)
	return nil
}

func buildPayload(from string, msg Message) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + msg.To + "\r\n")
	b.WriteString("Subject: " + msg.Subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.Body)
	return []byte(b.String())
}

// NopNotifier drops all notifications. Used when notifications are disabled.
type NopNotifier struct{}

// Send implements Notifier
func (NopNotifier) Send(ctx context.Context, msg Message) error {
	return nil
}

var (
	_ Notifier = (*SMTPNotifier)(nil)
	_ Notifier = NopNotifier{}
)
