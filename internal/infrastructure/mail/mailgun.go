package mail

import (
	"context"
	"fmt"
	"time"

	"github.com/mailgun/mailgun-go/v3"
	"github.com/rs/zerolog"

	"github.com/huahuacuna/fundacion-api/internal/core/ports"
)

const sendTimeout = 10 * time.Second

// Config holds the Mailgun account settings. APIBase is optional and only
// overridden for the EU region or tests.
type Config struct {
	Domain  string
	APIKey  string
	From    string
	APIBase string
}

// MailgunSender delivers plain-text mail through the Mailgun HTTP API.
type MailgunSender struct {
	mg   *mailgun.MailgunImpl
	from string
	log  zerolog.Logger
}

func NewMailgunSender(cfg Config, log zerolog.Logger) *MailgunSender {
	mg := mailgun.NewMailgun(cfg.Domain, cfg.APIKey)
	if cfg.APIBase != "" {
		mg.SetAPIBase(cfg.APIBase)
	}
	return &MailgunSender{mg: mg, from: cfg.From, log: log}
}

func (s *MailgunSender) Send(ctx context.Context, msg ports.Mail) error {
	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	m := s.mg.NewMessage(s.from, msg.Subject, msg.Body, msg.To)
	resp, id, err := s.mg.Send(ctx, m)
	if err != nil {
		return fmt.Errorf("mailgun send: %w", err)
	}
	s.log.Debug().Str("to", msg.To).Str("mailgun_id", id).Str("response", resp).Msg("mail sent")
	return nil
}

// LogSender writes mail to the log instead of sending it. It is used when no
// Mailgun key is configured.
type LogSender struct {
	log zerolog.Logger
}

func NewLogSender(log zerolog.Logger) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) Send(_ context.Context, msg ports.Mail) error {
	s.log.Info().
		Str("to", msg.To).
		Str("subject", msg.Subject).
		Str("body", msg.Body).
		Msg("mail not sent: no provider configured")
	return nil
}
