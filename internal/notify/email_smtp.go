package notify

import (
	"context"
	"fmt"
	"mime"
	"net/smtp"
	"strings"

	"github.com/mnoushir/portfolio-assistant/pkg/logging"
)

// SMTPConfig holds configuration for a plain SMTP relay.
type SMTPConfig struct {
	Server   string
	Port     int
	Username string
	Password string
}

// SMTPSender sends emails through an authenticated SMTP relay with STARTTLS.
type SMTPSender struct {
	cfg    SMTPConfig
	logger *logging.Logger
}

// NewSMTPSender creates an SMTP email sender. Returns nil when the relay
// settings are incomplete.
func NewSMTPSender(cfg SMTPConfig, logger *logging.Logger) *SMTPSender {
	if cfg.Server == "" || cfg.Username == "" || cfg.Password == "" {
		return nil
	}
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &SMTPSender{cfg: cfg, logger: logger}
}

// Send delivers the message through the relay. net/smtp has no context
// support, so the dial-and-send runs in a goroutine and the caller's
// context bounds the wait.
func (s *SMTPSender) Send(ctx context.Context, msg EmailMessage) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Server, s.cfg.Port)
	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Server)
	payload := buildMIMEMessage(s.cfg.Username, msg)

	done := make(chan error, 1)
	go func() {
		done <- smtp.SendMail(addr, auth, s.cfg.Username, []string{msg.To}, payload)
	}()

	select {
	case err := <-done:
		if err != nil {
			s.logger.Error("smtp send failed", "error", err, "to", msg.To, "server", s.cfg.Server)
			return fmt.Errorf("notify: smtp send failed: %w", err)
		}
		s.logger.Info("email sent via smtp", "to", msg.To, "subject", msg.Subject)
		return nil
	case <-ctx.Done():
		s.logger.Error("smtp send abandoned", "error", ctx.Err(), "to", msg.To)
		return fmt.Errorf("notify: smtp send abandoned: %w", ctx.Err())
	}
}

// buildMIMEMessage assembles a multipart/alternative payload so clients
// that cannot render HTML still get the plain text part.
func buildMIMEMessage(from string, msg EmailMessage) []byte {
	const boundary = "portfolio-assistant-alt"

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", msg.Subject))
	b.WriteString("MIME-Version: 1.0\r\n")

	if msg.HTML == "" {
		b.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n\r\n")
		b.WriteString(msg.Body)
		b.WriteString("\r\n")
		return []byte(b.String())
	}

	fmt.Fprintf(&b, "Content-Type: multipart/alternative; boundary=\"%s\"\r\n\r\n", boundary)
	fmt.Fprintf(&b, "--%s\r\nContent-Type: text/plain; charset=\"utf-8\"\r\n\r\n%s\r\n", boundary, msg.Body)
	fmt.Fprintf(&b, "--%s\r\nContent-Type: text/html; charset=\"utf-8\"\r\n\r\n%s\r\n", boundary, msg.HTML)
	fmt.Fprintf(&b, "--%s--\r\n", boundary)
	return []byte(b.String())
}
