// Package mail delivers the account emails over SMTP.
package mail

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pozinox/backend/internal/domain/identity"
	"github.com/pozinox/backend/internal/infrastructure/config"
	gomail "github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

const defaultSendTimeout = 15 * time.Second

// deliverer sends a built message; the SMTP client satisfies it
type deliverer interface {
	DialAndSendWithContext(ctx context.Context, messages ...*gomail.Msg) error
}

// SMTPSender sends verification emails through an SMTP relay
type SMTPSender struct {
	from     string
	fromName string
	store    string
	client   deliverer
	logger   *zap.Logger
}

// NewSMTPSender creates an SMTP sender from configuration
func NewSMTPSender(cfg config.MailConfig, store string, logger *zap.Logger) (*SMTPSender, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Host == "" {
		return nil, fmt.Errorf("mail host is required")
	}
	if cfg.From == "" {
		return nil, fmt.Errorf("mail sender address is required")
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultSendTimeout
	}
	opts := []gomail.Option{
		gomail.WithTimeout(timeout),
		gomail.WithTLSPolicy(tlsPolicy(cfg.TLSPolicy)),
	}
	if cfg.Port != 0 {
		opts = append(opts, gomail.WithPort(cfg.Port))
	}
	if cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(cfg.Username),
			gomail.WithPassword(cfg.Password),
		)
	}

	client, err := gomail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create SMTP client: %w", err)
	}

	return &SMTPSender{
		from:     cfg.From,
		fromName: cfg.FromName,
		store:    store,
		client:   client,
		logger:   logger,
	}, nil
}

// SendVerificationCode mails a six-digit code
func (s *SMTPSender) SendVerificationCode(ctx context.Context, to, code string) bool {
	msg, err := renderCode(s.store, code, identity.VerificationCodeTTL)
	if err != nil {
		s.logger.Error("Failed to render verification code email", zap.Error(err))
		return false
	}
	return s.send(ctx, to, msg)
}

// SendVerificationLink mails an account verification link
func (s *SMTPSender) SendVerificationLink(ctx context.Context, to, name, link string) bool {
	msg, err := renderLink(s.store, name, link, identity.EmailVerificationTokenTTL)
	if err != nil {
		s.logger.Error("Failed to render verification link email", zap.Error(err))
		return false
	}
	return s.send(ctx, to, msg)
}

func (s *SMTPSender) send(ctx context.Context, to string, msg *message) bool {
	m, err := s.build(to, msg)
	if err != nil {
		s.logger.Error("Failed to build email",
			zap.String("to", to),
			zap.Error(err))
		return false
	}

	if err := s.client.DialAndSendWithContext(ctx, m); err != nil {
		s.logger.Error("Failed to send email",
			zap.String("to", to),
			zap.String("subject", msg.Subject),
			zap.Error(err))
		return false
	}

	s.logger.Info("Email sent",
		zap.String("to", to),
		zap.String("subject", msg.Subject))
	return true
}

func (s *SMTPSender) build(to string, msg *message) (*gomail.Msg, error) {
	m := gomail.NewMsg()
	if s.fromName != "" {
		if err := m.FromFormat(s.fromName, s.from); err != nil {
			return nil, err
		}
	} else if err := m.From(s.from); err != nil {
		return nil, err
	}
	if err := m.To(to); err != nil {
		return nil, err
	}
	m.Subject(msg.Subject)
	m.SetBodyString(gomail.TypeTextPlain, msg.Text)
	m.AddAlternativeString(gomail.TypeTextHTML, msg.HTML)
	return m, nil
}

func tlsPolicy(policy string) gomail.TLSPolicy {
	switch strings.ToLower(policy) {
	case "none":
		return gomail.NoTLS
	case "opportunistic":
		return gomail.TLSOpportunistic
	default:
		return gomail.TLSMandatory
	}
}

// LogSender writes emails to the log instead of sending them. It is used
// when mail delivery is disabled.
type LogSender struct {
	logger *zap.Logger
}

// NewLogSender creates a LogSender
func NewLogSender(logger *zap.Logger) *LogSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSender{logger: logger}
}

// SendVerificationCode logs the code
func (l *LogSender) SendVerificationCode(_ context.Context, to, code string) bool {
	l.logger.Info("Mail disabled, verification code not sent",
		zap.String("to", to),
		zap.String("code", code))
	return true
}

// SendVerificationLink logs the link
func (l *LogSender) SendVerificationLink(_ context.Context, to, _, link string) bool {
	l.logger.Info("Mail disabled, verification link not sent",
		zap.String("to", to),
		zap.String("link", link))
	return true
}
