package email

import (
	"context"
	"errors"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/jordan-wright/email"

	"ManuscriptTracker/internal/ports"
)

// ErrMisconfigured is returned when the server, sender or recipients are missing.
var ErrMisconfigured = errors.New("email notifier misconfigured")

// Config describes the SMTP relay and the envelope.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       []string
}

// Notifier mails the digest as plain text.
type Notifier struct {
	cfg  Config
	send func(m *email.Email, addr string, auth smtp.Auth) error
}

var _ ports.Notifier = (*Notifier)(nil)

// NewNotifier wires SMTP settings; port 0 means 587.
func NewNotifier(cfg Config) *Notifier {
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	return &Notifier{
		cfg: cfg,
		send: func(m *email.Email, addr string, auth smtp.Auth) error {
			return m.Send(addr, auth)
		},
	}
}

// Name identifies the channel inside the registry.
func (n *Notifier) Name() string {
	return "email"
}

// Send delivers one message; ctx is only checked before dialing since the
// SMTP client has no cancellation hook.
func (n *Notifier) Send(ctx context.Context, title, body string) error {
	if n.cfg.Host == "" || n.cfg.From == "" || len(n.cfg.To) == 0 {
		return ErrMisconfigured
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	mail := email.NewEmail()
	mail.From = n.cfg.From
	mail.To = n.cfg.To
	mail.Subject = title
	mail.Text = []byte(body)

	addr := fmt.Sprintf("%s:%d", n.cfg.Host, n.cfg.Port)

	var auth smtp.Auth
	if n.cfg.Username != "" {
		auth = smtp.PlainAuth("", n.cfg.Username, n.cfg.Password, n.cfg.Host)
	}

	err := n.send(mail, addr, auth)
	if err != nil && auth != nil && strings.Contains(err.Error(), "server doesn't support AUTH") {
		err = n.send(mail, addr, nil)
	}
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	return nil
}
