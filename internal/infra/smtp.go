package infra

import (
	"errors"
	"fmt"
	"net/smtp"
	"sync"
	"time"

	"vendimax/internal/config"

	"github.com/jordan-wright/email"
)

// ErrSMTPNoDisponible is returned without dialing while the mail breaker is open.
var ErrSMTPNoDisponible = errors.New("mailer: smtp no disponible")

const (
	mailFallosMax = 5
	mailPausa     = 60 * time.Second
)

// Mailer sends notification mail through SMTP. After mailFallosMax
// consecutive failures it stops dialing for mailPausa, then lets a single
// attempt through to test the server again.
type Mailer struct {
	host     string
	user     string
	password string
	addr     string
	breaker  *mailBreaker
	send     func(e *email.Email, addr string, auth smtp.Auth) error
}

func NewMailer(cfg *config.Config) *Mailer {
	return &Mailer{
		host:     cfg.SMTPHost,
		user:     cfg.SMTPUser,
		password: cfg.SMTPPassword,
		addr:     fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
		breaker:  newMailBreaker(mailFallosMax, mailPausa),
		send: func(e *email.Email, addr string, auth smtp.Auth) error {
			return e.Send(addr, auth)
		},
	}
}

// Enabled is false when no SMTP host is configured.
func (m *Mailer) Enabled() bool { return m != nil && m.host != "" }

// BreakerState reports "closed", "open" or "half-open" for /health.
func (m *Mailer) BreakerState() string { return m.breaker.estado() }

// Send mails body to the recipients, attaching the file at attachPath if set.
func (m *Mailer) Send(to []string, subject, body, attachPath string) error {
	e := email.NewEmail()
	e.From = m.user
	e.To = to
	e.Subject = subject
	e.Text = []byte(body)

	if attachPath != "" {
		if _, err := e.AttachFile(attachPath); err != nil {
			return fmt.Errorf("mailer: attach %s: %w", attachPath, err)
		}
	}

	if !m.breaker.permitir() {
		return ErrSMTPNoDisponible
	}
	auth := smtp.PlainAuth("", m.user, m.password, m.host)
	err := m.send(e, m.addr, auth)
	m.breaker.registrar(err)
	return err
}

type mailBreaker struct {
	mu           sync.Mutex
	umbral       int
	pausa        time.Duration
	fallos       int
	abiertoHasta time.Time
	probando     bool
	now          func() time.Time
}

func newMailBreaker(umbral int, pausa time.Duration) *mailBreaker {
	return &mailBreaker{umbral: umbral, pausa: pausa, now: time.Now}
}

func (b *mailBreaker) estado() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.estadoLocked()
}

func (b *mailBreaker) estadoLocked() string {
	switch {
	case b.fallos < b.umbral:
		return "closed"
	case b.now().Before(b.abiertoHasta):
		return "open"
	default:
		return "half-open"
	}
}

// permitir admits every call while closed and one at a time while half-open.
func (b *mailBreaker) permitir() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch b.estadoLocked() {
	case "closed":
		return true
	case "half-open":
		if b.probando {
			return false
		}
		b.probando = true
		return true
	default:
		return false
	}
}

func (b *mailBreaker) registrar(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.probando = false
	if err == nil {
		b.fallos = 0
		return
	}
	b.fallos++
	if b.fallos >= b.umbral {
		b.abiertoHasta = b.now().Add(b.pausa)
	}
}
