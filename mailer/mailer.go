// Package mailer delivers account lifecycle email over SMTP using embedded
// HTML templates. It implements the auth.Mailer interface.
package mailer

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"html/template"
	"net"
	"net/smtp"
	"strings"
	"time"
)

// Config holds SMTP connection settings.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
	// UseSSL dials an implicit TLS connection (port 465). Otherwise the
	// client connects in plaintext and upgrades with STARTTLS (port 587).
	UseSSL  bool
	Timeout time.Duration
}

func (c Config) addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// SMTPMailer sends verification and reset links over SMTP.
type SMTPMailer struct {
	cfg       Config
	templates *template.Template
}

func New(cfg Config) (*SMTPMailer, error) {
	tmpl, err := template.New("emails").Parse(emailTemplates)
	if err != nil {
		return nil, fmt.Errorf("failed to parse email templates: %w", err)
	}

	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	return &SMTPMailer{
		cfg:       cfg,
		templates: tmpl,
	}, nil
}

// SendVerificationLink mails the email confirmation link for a new account.
func (m *SMTPMailer) SendVerificationLink(ctx context.Context, email, username, link string) error {
	body, err := m.renderTemplate("verification", linkData{
		Username: username,
		Link:     link,
		AppName:  m.appName(),
	})
	if err != nil {
		return fmt.Errorf("failed to render verification template: %w", err)
	}

	return m.send(ctx, email, "Confirm your email address", body)
}

// SendResetLink mails the password reset link.
func (m *SMTPMailer) SendResetLink(ctx context.Context, email, username, link string) error {
	body, err := m.renderTemplate("password_reset", linkData{
		Username: username,
		Link:     link,
		AppName:  m.appName(),
	})
	if err != nil {
		return fmt.Errorf("failed to render password reset template: %w", err)
	}

	return m.send(ctx, email, "Reset your password", body)
}

func (m *SMTPMailer) appName() string {
	if m.cfg.FromName != "" {
		return m.cfg.FromName
	}
	return m.cfg.From
}

func (m *SMTPMailer) send(ctx context.Context, to, subject, body string) error {
	from := m.cfg.From
	if m.cfg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", m.cfg.FromName, m.cfg.From)
	}

	var msg strings.Builder
	msg.WriteString("From: " + from + "\r\n")
	msg.WriteString("To: " + to + "\r\n")
	msg.WriteString("Subject: " + subject + "\r\n")
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)

	conn, err := m.dial(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, m.cfg.Host)
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}
	defer client.Close()

	if err := client.Hello("localhost"); err != nil {
		return fmt.Errorf("failed to send HELO: %w", err)
	}

	if !m.cfg.UseSSL {
		tlsConfig := &tls.Config{ServerName: m.cfg.Host}
		if err := client.StartTLS(tlsConfig); err != nil {
			return fmt.Errorf("failed to start TLS: %w", err)
		}
	}

	if m.cfg.Username != "" && m.cfg.Password != "" {
		auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("failed to authenticate: %w", err)
		}
	}

	if err := client.Mail(m.cfg.From); err != nil {
		return fmt.Errorf("failed to set sender (%s): %w", m.cfg.From, err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("failed to set recipient (%s): %w", to, err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to get data writer: %w", err)
	}

	if _, err := w.Write([]byte(msg.String())); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	return client.Quit()
}

func (m *SMTPMailer) dial(ctx context.Context) (net.Conn, error) {
	dialer := &net.Dialer{
		Timeout:   m.cfg.Timeout,
		KeepAlive: 30 * time.Second,
	}

	if m.cfg.UseSSL {
		tlsDialer := &tls.Dialer{
			NetDialer: dialer,
			Config:    &tls.Config{ServerName: m.cfg.Host},
		}
		conn, err := tlsDialer.DialContext(ctx, "tcp", m.cfg.addr())
		if err != nil {
			return nil, fmt.Errorf("failed to dial SMTP server (SSL) %s: %w", m.cfg.addr(), err)
		}
		return conn, nil
	}

	conn, err := dialer.DialContext(ctx, "tcp", m.cfg.addr())
	if err != nil {
		return nil, fmt.Errorf("failed to dial SMTP server %s: %w", m.cfg.addr(), err)
	}

	conn.SetDeadline(time.Now().Add(m.cfg.Timeout))
	return conn, nil
}

func (m *SMTPMailer) renderTemplate(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := m.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
