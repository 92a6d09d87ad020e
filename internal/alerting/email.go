package alerting

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"github.com/hostmond/hostmond/internal/config"
)

// EmailChannel delivers alerts over SMTP. Critical alerts carry
// high-importance headers so mail clients surface them.
type EmailChannel struct {
	cfg config.EmailConfig
}

func NewEmailChannel(cfg config.EmailConfig) *EmailChannel {
	return &EmailChannel{cfg: cfg}
}

func (c *EmailChannel) Name() string  { return "email" }
func (c *EmailChannel) Enabled() bool { return c.cfg.Enabled }

func (c *EmailChannel) Send(ctx context.Context, msg Message) error {
	if len(c.cfg.To) == 0 {
		return fmt.Errorf("email not configured")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", c.cfg.From)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(c.cfg.To, ", "))
	fmt.Fprintf(&b, "Subject: [hostmond] %s\r\n", msg.Title)
	if msg.Priority == PriorityCritical {
		b.WriteString("X-Priority: 1\r\n")
		b.WriteString("Importance: high\r\n")
	}
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.Body)
	fmt.Fprintf(&b, "\r\n\r\nTime: %s\r\n", time.Now().Format(time.RFC3339))

	var auth smtp.Auth
	if c.cfg.Username != "" {
		auth = smtp.PlainAuth("", c.cfg.Username, c.cfg.Password, c.cfg.SMTPServer)
	}
	addr := fmt.Sprintf("%s:%d", c.cfg.SMTPServer, c.cfg.SMTPPort)

	// smtp.SendMail has no context support; bound it ourselves.
	done := make(chan error, 1)
	go func() {
		done <- smtp.SendMail(addr, auth, c.cfg.From, c.cfg.To, []byte(b.String()))
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
