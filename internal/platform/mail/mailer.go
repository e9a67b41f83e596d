// Package mail sends transactional email through an SMTP relay.
package mail

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	gomail "github.com/wneessen/go-mail"

	"portfolio_blog/internal/feature/auth/usecase"
)

// Config holds SMTP relay settings.
type Config struct {
	Host          string
	Port          int
	UseTLS        bool
	Username      string
	Password      string
	DefaultSender string
	// BaseURL prefixes links in outgoing mail, e.g. "https://blog.example.com".
	BaseURL string
}

// LoadConfigFromEnv reads MAIL_* variables and APP_BASE_URL.
func LoadConfigFromEnv() Config {
	cfg := Config{
		Host:          os.Getenv("MAIL_SERVER"),
		Port:          587,
		UseTLS:        true,
		Username:      os.Getenv("MAIL_USERNAME"),
		Password:      os.Getenv("MAIL_PASSWORD"),
		DefaultSender: os.Getenv("MAIL_DEFAULT_SENDER"),
		BaseURL:       os.Getenv("APP_BASE_URL"),
	}
	if cfg.Host == "" {
		cfg.Host = "localhost"
	}
	if p, err := strconv.Atoi(os.Getenv("MAIL_PORT")); err == nil && p > 0 {
		cfg.Port = p
	}
	if v, err := strconv.ParseBool(os.Getenv("MAIL_USE_TLS")); err == nil {
		cfg.UseTLS = v
	}
	if cfg.DefaultSender == "" {
		cfg.DefaultSender = cfg.Username
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:8080"
	}
	return cfg
}

// Message is a plain-text email.
type Message struct {
	To      string
	Subject string
	Body    string
}

// deliverFunc hands a built message to the relay.
type deliverFunc func(ctx context.Context, msg *gomail.Msg) error

// SMTPMailer is the notification dispatcher.
type SMTPMailer struct {
	cfg     Config
	deliver deliverFunc
}

var _ usecase.ConfirmationSender = (*SMTPMailer)(nil)

// NewSMTPMailer creates a mailer that dials the relay for every message.
func NewSMTPMailer(cfg Config) *SMTPMailer {
	m := &SMTPMailer{cfg: cfg}
	m.deliver = m.dialAndSend
	return m
}

// clientOptions translates Config into go-mail client options.
func (m *SMTPMailer) clientOptions() []gomail.Option {
	opts := []gomail.Option{gomail.WithPort(m.cfg.Port)}
	if m.cfg.UseTLS {
		opts = append(opts, gomail.WithTLSPolicy(gomail.TLSMandatory))
	} else {
		opts = append(opts, gomail.WithTLSPolicy(gomail.NoTLS))
	}
	if m.cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(m.cfg.Username),
			gomail.WithPassword(m.cfg.Password),
		)
	}
	return opts
}

func (m *SMTPMailer) dialAndSend(ctx context.Context, msg *gomail.Msg) error {
	client, err := gomail.NewClient(m.cfg.Host, m.clientOptions()...)
	if err != nil {
		return fmt.Errorf("failed to create smtp client: %w", err)
	}
	return client.DialAndSendWithContext(ctx, msg)
}

// build assembles a go-mail message from the default sender.
func (m *SMTPMailer) build(msg Message) (*gomail.Msg, error) {
	out := gomail.NewMsg()
	if err := out.From(m.cfg.DefaultSender); err != nil {
		return nil, fmt.Errorf("invalid sender %q: %w", m.cfg.DefaultSender, err)
	}
	if err := out.To(msg.To); err != nil {
		return nil, fmt.Errorf("invalid recipient %q: %w", msg.To, err)
	}
	out.Subject(msg.Subject)
	out.SetBodyString(gomail.TypeTextPlain, msg.Body)
	out.SetDate()
	return out, nil
}

// Send delivers msg through the relay.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	out, err := m.build(msg)
	if err != nil {
		return err
	}
	if err := m.deliver(ctx, out); err != nil {
		slog.Error("mail delivery failed", "to", msg.To, "subject", msg.Subject, "error", err)
		return fmt.Errorf("failed to send mail: %w", err)
	}
	slog.Info("mail sent", "to", msg.To, "subject", msg.Subject)
	return nil
}

// ConfirmationLink returns the absolute URL that redeems token.
func (m *SMTPMailer) ConfirmationLink(token string) string {
	return strings.TrimRight(m.cfg.BaseURL, "/") + "/confirm/" + token
}

// SendConfirmation mails the account confirmation link.
func (m *SMTPMailer) SendConfirmation(ctx context.Context, email, token string) error {
	link := m.ConfirmationLink(token)
	return m.Send(ctx, Message{
		To:      email,
		Subject: "Please confirm your email",
		Body: "Thanks for signing up!\n\n" +
			"Open the link below within one hour to activate your account:\n\n" +
			link + "\n",
	})
}
