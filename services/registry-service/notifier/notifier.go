package notifier

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"

	"blood-donor-registry/services/registry-service/models"

	"go.uber.org/zap"
)

type Config struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

type Welcome struct {
	To         string
	Name       string
	Role       models.Role
	HospitalID string
}

// Mailer submits welcome messages over implicit TLS with PLAIN auth.
type Mailer struct {
	cfg    Config
	logger *zap.Logger
	dial   func(ctx context.Context, network, addr string) (net.Conn, error)
}

func NewMailer(cfg Config, logger *zap.Logger) *Mailer {
	if cfg.From == "" {
		cfg.From = cfg.Username
	}
	dialer := &tls.Dialer{Config: &tls.Config{ServerName: cfg.Host}}
	return &Mailer{cfg: cfg, logger: logger, dial: dialer.DialContext}
}

func (m *Mailer) Enabled() bool {
	return m.cfg.Host != ""
}

// SendWelcome reports whether the relay accepted the message. Failures are
// logged, never returned.
func (m *Mailer) SendWelcome(ctx context.Context, msg Welcome) bool {
	if !m.Enabled() {
		m.logger.Warn("mail relay not configured, skipping welcome email", zap.String("role", string(msg.Role)))
		return false
	}

	subject, body, err := Compose(msg)
	if err != nil {
		m.logger.Error("failed to compose welcome email", zap.Error(err))
		return false
	}

	if err := m.send(ctx, msg.To, subject, body); err != nil {
		m.logger.Warn("failed to send welcome email", zap.String("role", string(msg.Role)), zap.Error(err))
		return false
	}

	m.logger.Info("welcome email sent", zap.String("role", string(msg.Role)))
	return true
}

func (m *Mailer) send(ctx context.Context, to, subject, body string) error {
	if strings.ContainsAny(to, "\r\n") {
		return fmt.Errorf("invalid recipient address")
	}

	msg := []byte(
		fmt.Sprintf("From: %s\r\n", m.cfg.From) +
			fmt.Sprintf("To: %s\r\n", to) +
			fmt.Sprintf("Subject: %s\r\n", subject) +
			"MIME-Version: 1.0\r\n" +
			"Content-Type: text/html; charset=\"utf-8\"\r\n" +
			"\r\n" +
			body,
	)

	conn, err := m.dial(ctx, "tcp", net.JoinHostPort(m.cfg.Host, m.cfg.Port))
	if err != nil {
		return fmt.Errorf("dial relay: %w", err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(deadline); err != nil {
			return err
		}
	}

	client, err := smtp.NewClient(conn, m.cfg.Host)
	if err != nil {
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer client.Close()

	auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("smtp auth: %w", err)
	}

	if err := client.Mail(m.cfg.From); err != nil {
		return err
	}
	if err := client.Rcpt(to); err != nil {
		return err
	}

	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}

	return client.Quit()
}
