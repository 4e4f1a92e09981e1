package mailer

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/Skotchmaster/vente_shop/pkg/config"
	"github.com/Skotchmaster/vente_shop/pkg/logging"
	"github.com/Skotchmaster/vente_shop/pkg/metrics"
)

type Message struct {
	To      string
	Subject string
	Body    string
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

func New(cfg config.Config, logger *slog.Logger) Mailer {
	if cfg.SMTPAddr == "" {
		return LogMailer{Logger: logger}
	}
	return &SMTPMailer{
		Addr:     cfg.SMTPAddr,
		User:     cfg.SMTPUser,
		Password: cfg.SMTPPassword,
		From:     cfg.MailFrom,
	}
}

type SMTPMailer struct {
	Addr     string
	User     string
	Password string
	From     string
}

func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return fmt.Errorf("mailer: empty recipient")
	}

	var auth smtp.Auth
	if m.User != "" {
		host, _, err := net.SplitHostPort(m.Addr)
		if err != nil {
			return fmt.Errorf("mailer: bad addr %q: %w", m.Addr, err)
		}
		auth = smtp.PlainAuth("", m.User, m.Password, host)
	}

	done := make(chan error, 1)
	go func() {
		done <- smtp.SendMail(m.Addr, auth, m.From, []string{msg.To}, m.render(msg))
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *SMTPMailer) render(msg Message) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", m.From)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", sanitizeHeader(msg.Subject))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n\r\n")
	b.WriteString(msg.Body)
	return []byte(b.String())
}

func sanitizeHeader(s string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(s)
}

// LogMailer writes messages to the log instead of sending them.
type LogMailer struct {
	Logger *slog.Logger
}

func (m LogMailer) Send(ctx context.Context, msg Message) error {
	l := m.Logger
	if l == nil {
		l = logging.FromContext(ctx)
	}
	l.Info("mail_logged", "to", msg.To, "subject", msg.Subject)
	return nil
}

// SendAsync delivers in the background. Failures are logged and counted only.
func SendAsync(ctx context.Context, m Mailer, msg Message) {
	if m == nil || msg.To == "" {
		return
	}
	bg := logging.Detach(ctx)
	go func() {
		sendCtx, cancel := context.WithTimeout(bg, 15*time.Second)
		defer cancel()
		if err := m.Send(sendCtx, msg); err != nil {
			metrics.SideEffectErrorsTotal.WithLabelValues("email").Inc()
			logging.FromContext(bg).Warn("email_send_failed", "to", msg.To, "subject", msg.Subject, "error", err)
		}
	}()
}
