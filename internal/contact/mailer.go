package contact

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
)

// Mailer delivers a message to the site owner.
type Mailer interface {
	Send(ctx context.Context, f Form) error
}

// SMTPMailer sends mail with PLAIN auth.
type SMTPMailer struct {
	Host     string
	Port     string
	User     string
	Password string
	To       string

	// send defaults to smtp.SendMail.
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// Send composes and sends the message. The context is checked before
// dialing; net/smtp offers no cancellation once connected.
func (m *SMTPMailer) Send(ctx context.Context, f Form) error {
	if m.User == "" || m.Password == "" {
		return fmt.Errorf("SMTP credentials not configured")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	to := m.To
	if to == "" {
		to = m.User
	}
	send := m.send
	if send == nil {
		send = smtp.SendMail
	}

	auth := smtp.PlainAuth("", m.User, m.Password, m.Host)
	if err := send(m.Host+":"+m.Port, auth, m.User, []string{to}, composeMessage(m.User, to, f)); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func composeMessage(from, to string, f Form) []byte {
	subject := fmt.Sprintf("Portfolio Contact: %s", oneLine(f.Subject))
	body := fmt.Sprintf(`
New contact form submission from your portfolio:

Name: %s
Email: %s
Subject: %s
Message:
%s

---
Sent from your portfolio contact form
`, f.Name, f.Email, f.Subject, f.Message)

	return []byte("To: " + to + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"From: " + from + "\r\n" +
		"Reply-To: " + oneLine(f.Email) + "\r\n" +
		"\r\n" +
		body + "\r\n")
}

// oneLine strips CR and LF so header values cannot inject headers.
func oneLine(s string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(s)
}
