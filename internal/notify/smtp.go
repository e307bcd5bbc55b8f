package notify

import (
	"context"
	"net"
	"net/smtp"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
)

// SMTPConfig holds relay settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     Sender
}

// SMTPMailer sends through an SMTP relay with STARTTLS when offered.
type SMTPMailer struct {
	cfg  SMTPConfig
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
	now  func() time.Time
}

// NewSMTPMailer creates a relay mailer.
func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg, send: smtp.SendMail, now: time.Now}
}

// Send delivers msg. smtp.SendMail has no context support, so ctx is only
// checked before dialing.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if msg.ToAddress == "" {
		return errors.New("smtp: empty recipient")
	}
	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}
	addr := net.JoinHostPort(m.cfg.Host, strconv.Itoa(m.cfg.Port))
	body := buildMIME(m.cfg.From, msg, m.now())
	if err := m.send(addr, auth, m.cfg.From.Address, []string{msg.ToAddress}, body); err != nil {
		return errors.Wrapf(err, "smtp: failed to send to %s", msg.ToAddress)
	}
	return nil
}
