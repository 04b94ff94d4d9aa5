package email

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"

	"github.com/jwalitptl/pdf-api/internal/config"
)

type Service interface {
	SendWelcome(ctx context.Context, email string, name string) error
}

// Dialer is satisfied by *gomail.Dialer.
type Dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

type smtpService struct {
	dialer Dialer
	from   string
}

// NewService returns an SMTP sender when email is enabled and a logging
// no-op otherwise.
func NewService(cfg config.EmailConfig, logger zerolog.Logger) Service {
	if !cfg.Enabled {
		return noopService{logger: logger.With().Str("component", "email").Logger()}
	}
	return NewSMTPService(gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password), cfg.From)
}

func NewSMTPService(dialer Dialer, from string) Service {
	return &smtpService{dialer: dialer, from: from}
}

func (s *smtpService) SendWelcome(ctx context.Context, email string, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.dialer.DialAndSend(welcomeMessage(s.from, email, name)); err != nil {
		return fmt.Errorf("failed to send welcome email: %w", err)
	}
	return nil
}

func welcomeMessage(from, to, name string) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetAddressHeader("To", to, name)
	m.SetHeader("Subject", "Welcome to the PDF Generation API")
	m.SetBody("text/plain", fmt.Sprintf(
		"Hello %s,\n\nYour account has been created. Sign in with %s to start generating prescriptions and invoices.\n",
		name, to,
	))
	return m
}

type noopService struct {
	logger zerolog.Logger
}

func (n noopService) SendWelcome(_ context.Context, email string, _ string) error {
	n.logger.Debug().Str("to", email).Msg("email disabled, welcome message skipped")
	return nil
}
