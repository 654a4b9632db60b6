// Package notify delivers out-of-band messages such as login codes.
package notify

import (
	"context"

	"go.uber.org/zap"
)

// Notifier sends a plain-text message to a single recipient.
type Notifier interface {
	Send(ctx context.Context, to, subject, body string) error
}

// Log writes messages to the logger instead of delivering them. It is meant
// for local development when no SMTP relay is configured.
type Log struct {
	logger *zap.SugaredLogger
}

func NewLog(logger *zap.SugaredLogger) *Log {
	return &Log{logger: logger}
}

func (l *Log) Send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	l.logger.Infow("notification (not delivered)", "to", to, "subject", subject, "body", body)
	return nil
}
