package infra

import (
	"bytes"
	"errors"
	"fmt"
	"net/smtp"

	"cajapos/internal/config"

	"github.com/jordan-wright/email"
)

// ErrSinSMTP is returned when sending without an SMTP host.
var ErrSinSMTP = errors.New("mailer: smtp no configurado")

// Mailer wraps SMTP configuration for sending reports with a PDF attachment.
// Every send goes through a circuit breaker so a dead SMTP relay fails fast.
type Mailer struct {
	host     string
	user     string
	password string
	addr     string
	cb       *CircuitBreaker
}

func NewMailer(cfg *config.Config) *Mailer {
	return &Mailer{
		host:     cfg.SMTPHost,
		user:     cfg.SMTPUser,
		password: cfg.SMTPPassword,
		addr:     fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
		cb:       NewCircuitBreaker(DefaultCBConfig()),
	}
}

// Configured reports whether an SMTP host was provided.
// A nil Mailer is valid and never configured.
func (m *Mailer) Configured() bool { return m != nil && m.host != "" }

// CircuitState exposes the breaker state for health checks. A nil Mailer
// reports closed.
func (m *Mailer) CircuitState() CBState {
	if m == nil || m.cb == nil {
		return CBClosed
	}
	return m.cb.State()
}

// SendReporte mails a PDF document as attachment.
func (m *Mailer) SendReporte(to, subject, body, fileName string, pdf []byte) error {
	if !m.Configured() || m.cb == nil {
		return ErrSinSMTP
	}
	e := email.NewEmail()
	e.From = m.user
	e.To = []string{to}
	e.Subject = subject
	e.Text = []byte(body)

	if len(pdf) > 0 {
		if _, err := e.Attach(bytes.NewReader(pdf), fileName, "application/pdf"); err != nil {
			return fmt.Errorf("mailer: attach PDF: %w", err)
		}
	}

	auth := smtp.PlainAuth("", m.user, m.password, m.host)
	return m.cb.Execute(func() error {
		return e.Send(m.addr, auth)
	})
}
