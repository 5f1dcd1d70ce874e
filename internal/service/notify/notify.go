package notify

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"

	"github.com/alamarhq/alamar/internal/logger"
)

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Mailer sends plain-text mail over SMTP. Callers treat delivery as
// best-effort; the wallet service swallows errors from Send.
type Mailer struct {
	from   string
	client *mail.Client
	logger logger.Logger
}

func NewMailer(cfg Config, l logger.Logger) (*Mailer, error) {
	if l == nil {
		l = logger.NewNoOpLogger()
	}

	opts := []mail.Option{mail.WithPort(cfg.Port)}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("can't create smtp client. Err: %w", err)
	}

	return &Mailer{
		from:   cfg.From,
		client: client,
		logger: l,
	}, nil
}

func (m *Mailer) Send(ctx context.Context, to string, subject string, text string) error {
	msg := mail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return fmt.Errorf("invalid from address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("invalid to address: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, text)

	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("can't send mail: %w", err)
	}

	m.logger.Debug("Mail sent", "to", to, "subject", subject)
	return nil
}

// NoOp discards every notification. Used in tests and environments
// without SMTP configured.
type NoOp struct{}

func (NoOp) Send(ctx context.Context, to string, subject string, text string) error {
	return nil
}
