// Package notify delivers portal mail on a detached, rate-limited worker.
package notify

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"net/mail"
	"time"

	"go.uber.org/zap"
)

// Message is one outbound HTML mail.
type Message struct {
	ToAddress string
	ToName    string
	Subject   string
	HTMLBody  string
}

// Mailer sends a single message synchronously. Send must return once ctx is
// done; the dispatcher stops waiting for it on shutdown.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// Sender identifies the From header.
type Sender struct {
	Address string
	Name    string
}

// buildMIME renders msg as an RFC 5322 message with an HTML body.
func buildMIME(from Sender, msg Message, now time.Time) []byte {
	var buf bytes.Buffer
	fromAddr := mail.Address{Name: from.Name, Address: from.Address}
	toAddr := mail.Address{Name: msg.ToName, Address: msg.ToAddress}

	fmt.Fprintf(&buf, "From: %s\r\n", fromAddr.String())
	fmt.Fprintf(&buf, "To: %s\r\n", toAddr.String())
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", msg.Subject))
	fmt.Fprintf(&buf, "Date: %s\r\n", now.Format(time.RFC1123Z))
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	buf.WriteString("Content-Transfer-Encoding: 8bit\r\n")
	buf.WriteString("\r\n")
	buf.WriteString(msg.HTMLBody)
	return buf.Bytes()
}

// LogMailer records messages in the log instead of sending them.
type LogMailer struct {
	logger *zap.SugaredLogger
}

// NewLogMailer creates a mailer for local development.
func NewLogMailer(logger *zap.SugaredLogger) *LogMailer {
	return &LogMailer{logger: logger}
}

// Send logs msg.
func (m *LogMailer) Send(_ context.Context, msg Message) error {
	m.logger.Infow("mail suppressed by log transport",
		"recipient", msg.ToAddress,
		"subject", msg.Subject,
	)
	return nil
}
