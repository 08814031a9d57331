package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/wneessen/go-mail"
)

// SMTPConfig holds the account the sender authenticates with.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	Timeout  time.Duration
}

type mailClient interface {
	DialAndSendWithContext(ctx context.Context, msgs ...*mail.Msg) error
}

// SMTPSender delivers messages over authenticated SMTP. Every Send opens its
// own connection.
type SMTPSender struct {
	client mailClient
	from   string
}

func NewSMTPSender(cfg SMTPConfig) (*SMTPSender, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.Username),
		mail.WithPassword(cfg.Password),
		mail.WithTLSPolicy(mail.TLSMandatory),
	}
	// 465 is implicit TLS; everything else upgrades with STARTTLS
	if cfg.Port == 465 {
		opts = append(opts, mail.WithSSL())
	}
	if cfg.Timeout > 0 {
		opts = append(opts, mail.WithTimeout(cfg.Timeout))
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SMTP client: %w", err)
	}

	from := cfg.From
	if from == "" {
		from = cfg.Username
	}
	return &SMTPSender{client: client, from: from}, nil
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	m, err := s.build(msg)
	if err != nil {
		return err
	}
	if err := s.client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("send %q to %s: %w", msg.Subject, msg.To, err)
	}
	return nil
}

func (s *SMTPSender) build(msg Message) (*mail.Msg, error) {
	m := mail.NewMsg()
	if err := m.From(s.from); err != nil {
		return nil, fmt.Errorf("invalid sender address %q: %w", s.from, err)
	}
	if err := m.To(msg.To); err != nil {
		return nil, fmt.Errorf("invalid recipient address %q: %w", msg.To, err)
	}
	m.Subject(msg.Subject)
	m.SetDate()
	m.SetBodyString(mail.TypeTextHTML, msg.HTMLBody)
	return m, nil
}
