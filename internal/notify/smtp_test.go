package notify

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

func TestSMTPBuildsMessage(t *testing.T) {
	s, err := NewSMTP(SMTPConfig{Host: "localhost", Port: 2525, From: "noreply@hcagents.dev", FromName: "HCAgents", TLS: "none"})
	require.NoError(t, err)

	var sent *mail.Msg
	s.dial = func(_ context.Context, msg *mail.Msg) error {
		sent = msg
		return nil
	}

	require.NoError(t, s.Send(context.Background(), "u@x.com", "HCAgents - OTP Code", "Your OTP code is: 048213"))
	require.NotNil(t, sent)
	assert.Equal(t, []string{"HCAgents - OTP Code"}, sent.GetGenHeader(mail.HeaderSubject))

	var buf bytes.Buffer
	_, err = sent.WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Your OTP code is: 048213")
	assert.Contains(t, buf.String(), "<u@x.com>")
}

func TestSMTPSendError(t *testing.T) {
	s, err := NewSMTP(SMTPConfig{Host: "localhost", Port: 2525, From: "noreply@hcagents.dev"})
	require.NoError(t, err)
	refused := errors.New("connection refused")
	s.dial = func(context.Context, *mail.Msg) error { return refused }

	assert.ErrorIs(t, s.Send(context.Background(), "u@x.com", "s", "b"), refused)
}

func TestSMTPRejectsBadRecipient(t *testing.T) {
	s, err := NewSMTP(SMTPConfig{Host: "localhost", Port: 2525, From: "noreply@hcagents.dev"})
	require.NoError(t, err)
	s.dial = func(context.Context, *mail.Msg) error {
		t.Fatal("must not dial with an invalid recipient")
		return nil
	}

	assert.Error(t, s.Send(context.Background(), "not an address", "s", "b"))
}

func TestNewSMTPRequiresHostAndFrom(t *testing.T) {
	_, err := NewSMTP(SMTPConfig{From: "a@b.c"})
	assert.Error(t, err)
	_, err = NewSMTP(SMTPConfig{Host: "localhost"})
	assert.Error(t, err)
}

func TestLogNotifier(t *testing.T) {
	n := NewLog(zap.NewNop().Sugar())
	assert.NoError(t, n.Send(context.Background(), "u@x.com", "s", "b"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, n.Send(ctx, "u@x.com", "s", "b"), context.Canceled)
}
