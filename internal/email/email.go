package email

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/thrivenig/travelbook/config"
)

// Sender is the transactional email channel. Delivery is synchronous and not
// retried; callers decide whether a failure aborts their request.
type Sender interface {
	Send(ctx context.Context, subject string, to []string, htmlBody, textBody string) error
}

// SMTPSender delivers through a plain SMTP relay.
type SMTPSender struct {
	addr string
	from string
	auth smtp.Auth
}

func NewSMTPSender(cfg config.EmailConfig) *SMTPSender {
	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	return &SMTPSender{addr: cfg.Addr(), from: cfg.From, auth: auth}
}

func (s *SMTPSender) Send(ctx context.Context, subject string, to []string, htmlBody, textBody string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := buildMessage(s.from, to, subject, htmlBody, textBody)
	if err := smtp.SendMail(s.addr, s.auth, s.from, to, msg); err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	return nil
}

// buildMessage assembles an HTML message, multipart/alternative when a text
// body is supplied.
func buildMessage(from string, to []string, subject, htmlBody, textBody string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(to, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")

	if textBody == "" {
		b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n\r\n")
		b.WriteString(htmlBody)
		return []byte(b.String())
	}

	const boundary = "travelbook-alt"
	fmt.Fprintf(&b, "Content-Type: multipart/alternative; boundary=%q\r\n\r\n", boundary)
	fmt.Fprintf(&b, "--%s\r\nContent-Type: text/plain; charset=\"UTF-8\"\r\n\r\n%s\r\n", boundary, textBody)
	fmt.Fprintf(&b, "--%s\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n%s\r\n", boundary, htmlBody)
	fmt.Fprintf(&b, "--%s--\r\n", boundary)
	return []byte(b.String())
}
