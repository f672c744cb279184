package mailer

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/mamadoubah/nimbashop-backend/pkg/config"
	"github.com/mamadoubah/nimbashop-backend/pkg/logger"
)

// Message is a plain-text email ready to send.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender delivers email messages.
type Sender interface {
	Send(ctx context.Context, msg Message) error
	SendAsync(ctx context.Context, msg Message)
}

type mailer struct {
	cfg  config.SMTPConfig
	logg *logger.Logger
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// New constructs an SMTP-backed mailer. When SMTP is not configured the
// returned sender drops messages after logging them.
func New(cfg config.SMTPConfig, logg *logger.Logger) (Sender, error) {
	if logg == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &mailer{cfg: cfg, logg: logg, send: smtp.SendMail}, nil
}

func (m *mailer) Send(ctx context.Context, msg Message) error {
	if strings.TrimSpace(msg.To) == "" {
		return fmt.Errorf("recipient is required")
	}
	if !m.cfg.Enabled() {
		m.logg.Info(m.logg.WithField(ctx, "email_to", msg.To), "smtp not configured, dropping email")
		return nil
	}

	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	payload := buildPayload(m.cfg.DefaultFrom, msg)
	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	if err := m.send(addr, auth, m.cfg.DefaultFrom, []string{msg.To}, payload); err != nil {
		return fmt.Errorf("sending email: %w", err)
	}
	return nil
}

// SendAsync delivers the message on a new goroutine. Failures are logged
// and never surface to the caller; email must not block order flows.
func (m *mailer) SendAsync(ctx context.Context, msg Message) {
	go func() {
		ctx := context.WithoutCancel(ctx)
		if err := m.Send(ctx, msg); err != nil {
			m.logg.Error(m.logg.WithField(ctx, "email_to", msg.To), "email delivery failed", err)
		}
	}()
}

func buildPayload(from string, msg Message) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.Body)
	return []byte(b.String())
}
