package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"procurement-radar/vars"

	"github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

var ErrNotConfigured = errors.New("smtp is not configured")

// Sender delivers one HTML message to recipients.
type Sender interface {
	Send(ctx context.Context, subject, htmlBody string, recipients []string) error
}

// SMTPSender sends mail over STARTTLS with PLAIN auth.
type SMTPSender struct {
	cfg     vars.SMTPConfig
	timeout time.Duration
	log     *zap.Logger
}

func NewSMTPSender(cfg vars.SMTPConfig, timeout time.Duration, log *zap.Logger) *SMTPSender {
	return &SMTPSender{cfg: cfg, timeout: timeout, log: log}
}

func (s *SMTPSender) Send(ctx context.Context, subject, htmlBody string, recipients []string) error {
	var to []string
	for _, r := range recipients {
		if r = strings.TrimSpace(r); r != "" {
			to = append(to, r)
		}
	}
	if len(to) == 0 {
		return fmt.Errorf("no recipients")
	}
	if !s.cfg.Configured() {
		return ErrNotConfigured
	}

	m := mail.NewMsg()
	if err := m.From(s.cfg.From); err != nil {
		return fmt.Errorf("invalid from address: %w", err)
	}
	if err := m.To(to...); err != nil {
		return fmt.Errorf("invalid recipient: %w", err)
	}
	m.Subject(subject)
	m.SetBodyString(mail.TypeTextPlain, "This message requires an HTML-capable mail client.")
	m.AddAlternativeString(mail.TypeTextHTML, htmlBody)

	opts := []mail.Option{
		mail.WithPort(s.cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(s.cfg.User),
		mail.WithPassword(s.cfg.Password),
		mail.WithTLSPolicy(mail.TLSMandatory),
	}
	if s.timeout > 0 {
		opts = append(opts, mail.WithTimeout(s.timeout))
	}
	c, err := mail.NewClient(s.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("create smtp client: %w", err)
	}
	if err := c.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	s.log.Info("email sent", zap.Strings("to", to), zap.String("subject", subject))
	return nil
}
