package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/wneessen/go-mail"
)

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
	// TLS is one of "mandatory", "opportunistic" or "none".
	TLS string
}

// SMTP delivers messages through an SMTP relay.
type SMTP struct {
	cfg  SMTPConfig
	dial func(ctx context.Context, msg *mail.Msg) error
}

func NewSMTP(cfg SMTPConfig) (*SMTP, error) {
	if cfg.Host == "" {
		return nil, errors.New("smtp host is required")
	}
	if cfg.From == "" {
		return nil, errors.New("smtp from address is required")
	}
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	opts := []mail.Option{mail.WithPort(cfg.Port), mail.WithTLSPolicy(tlsPolicy(cfg.TLS))}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}
	if _, err := mail.NewClient(cfg.Host, opts...); err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}
	// A mail.Client holds the state of one SMTP session, so each send gets
	// its own.
	dial := func(ctx context.Context, msg *mail.Msg) error {
		client, err := mail.NewClient(cfg.Host, opts...)
		if err != nil {
			return fmt.Errorf("smtp client: %w", err)
		}
		return client.DialAndSendWithContext(ctx, msg)
	}
	return &SMTP{cfg: cfg, dial: dial}, nil
}

func (s *SMTP) Send(ctx context.Context, to, subject, body string) error {
	msg, err := s.message(to, subject, body)
	if err != nil {
		return err
	}
	if err := s.dial(ctx, msg); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}

func (s *SMTP) message(to, subject, body string) (*mail.Msg, error) {
	msg := mail.NewMsg()
	var err error
	if s.cfg.FromName != "" {
		err = msg.FromFormat(s.cfg.FromName, s.cfg.From)
	} else {
		err = msg.From(s.cfg.From)
	}
	if err != nil {
		return nil, fmt.Errorf("from address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return nil, fmt.Errorf("recipient address: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)
	return msg, nil
}

func tlsPolicy(s string) mail.TLSPolicy {
	switch s {
	case "none":
		return mail.NoTLS
	case "opportunistic":
		return mail.TLSOpportunistic
	default:
		return mail.TLSMandatory
	}
}
