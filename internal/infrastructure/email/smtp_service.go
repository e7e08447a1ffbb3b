package email

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
)

// Message is a plain-text email.
type Message struct {
	To      []string
	Subject string
	Body    string
}

// Sender delivers one message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type smtpSender struct {
	addr string
	from string
	auth smtp.Auth
}

// NewSMTPSender sends through host:port. Authentication is skipped when
// username is empty (local relays, mailhog).
func NewSMTPSender(host, port, username, password, from string) Sender {
	s := &smtpSender{
		addr: host + ":" + port,
		from: from,
	}
	if username != "" {
		s.auth = smtp.PlainAuth("", username, password, host)
	}
	return s
}

func (s *smtpSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(msg.To) == 0 {
		return fmt.Errorf("email has no recipients")
	}

	if err := smtp.SendMail(s.addr, s.auth, s.from, msg.To, Build(s.from, msg)); err != nil {
		return fmt.Errorf("failed to send email via %s: %w", s.addr, err)
	}
	return nil
}

// Build renders msg as an RFC 5322 message.
func Build(from string, msg Message) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(msg.To, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
	b.WriteString(strings.ReplaceAll(msg.Body, "\n", "\r\n"))
	return []byte(b.String())
}
