package mailer

import (
	"fmt"
	"net/smtp"

	"github.com/jordan-wright/email"

	"github.com/globalmarket/backend/internal/config"
)

// SMTPMailer delivers mail over a single SMTP relay. It satisfies the
// Mailer interfaces declared by the auth and notification services.
type SMTPMailer struct {
	addr string
	auth smtp.Auth
	from string
}

func NewSMTP(cfg *config.Config) *SMTPMailer {
	return &SMTPMailer{
		addr: fmt.Sprintf("%s:%s", cfg.SMTP_HOST, cfg.SMTP_PORT),
		auth: smtp.PlainAuth("", cfg.SMTP_USER, cfg.SMTP_PASSWORD, cfg.SMTP_HOST),
		from: cfg.SMTP_FROM,
	}
}

func (m *SMTPMailer) Send(to, subject, htmlBody, plainText string) error {
	e := email.NewEmail()
	e.From = m.from
	e.To = []string{to}
	e.Subject = subject
	e.Text = []byte(plainText)
	e.HTML = []byte(htmlBody)

	if err := e.Send(m.addr, m.auth); err != nil {
		return fmt.Errorf("mailer: send to %s failed: %w", to, err)
	}
	return nil
}
