package mailx

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestOutbox(t *testing.T) {
	var o Outbox
	ctx := context.Background()

	require.NoError(t, o.Send(ctx, Message{To: "a@x.com", Subject: "one"}))
	require.NoError(t, o.Send(ctx, Message{To: "b@x.com", Subject: "two"}))
	require.NoError(t, o.Send(ctx, Message{To: "a@x.com", Subject: "three"}))

	require.Len(t, o.Sent(), 3)
	last, ok := o.Last("a@x.com")
	require.True(t, ok)
	require.Equal(t, "three", last.Subject)

	_, ok = o.Last("nobody@x.com")
	require.False(t, ok)

	o.FailWith(errors.New("relay down"))
	require.Error(t, o.Send(ctx, Message{To: "a@x.com", Subject: "four"}))
	require.Len(t, o.Sent(), 3)

	require.ErrorIs(t, o.Send(ctx, Message{Subject: "no recipient"}), ErrInvalidMessage)
}

func TestLogSender(t *testing.T) {
	var buf bytes.Buffer
	s := LogSender{Logger: slog.New(slog.NewTextHandler(&buf, nil))}

	require.NoError(t, s.Send(context.Background(), Message{To: "a@x.com", Subject: "Verify", Text: "http://link"}))
	require.Contains(t, buf.String(), "a@x.com")
	require.Contains(t, buf.String(), "http://link")
}

func TestNewSMTPSender(t *testing.T) {
	_, err := NewSMTPSender(SMTPConfig{})
	require.Error(t, err)

	_, err = NewSMTPSender(SMTPConfig{Host: "smtp.example.com"})
	require.Error(t, err)

	s, err := NewSMTPSender(SMTPConfig{Host: "smtp.example.com", Username: "bot@example.com"})
	require.NoError(t, err)
	require.Equal(t, 587, s.cfg.Port)
	require.Equal(t, "bot@example.com", s.cfg.From)
}

func TestSMTPSender_BuildMsg(t *testing.T) {
	s, err := NewSMTPSender(SMTPConfig{Host: "smtp.example.com", From: "bot@example.com", FromName: "TODO PILOT"})
	require.NoError(t, err)

	msg, err := s.buildMsg(Message{To: "a@x.com", Subject: "Verify your email", Text: "hi", HTML: "<p>hi</p>"})
	require.NoError(t, err)

	rcpts, err := msg.GetRecipients()
	require.NoError(t, err)
	require.Equal(t, []string{"a@x.com"}, rcpts)

	_, err = s.buildMsg(Message{To: "not an address", Subject: "x"})
	require.Error(t, err)
}

func TestSMTPSender_Unreachable(t *testing.T) {
	s, err := NewSMTPSender(SMTPConfig{Host: "127.0.0.1", Port: 1, From: "bot@example.com", Timeout: time.Second})
	require.NoError(t, err)

	err = s.Send(context.Background(), Message{To: "a@x.com", Subject: "x", Text: "y"})
	require.Error(t, err)
}
