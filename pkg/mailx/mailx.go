// Package mailx sends transactional email. SMTPSender talks to a real relay;
// LogSender and Outbox stand in for it in development and tests.
package mailx

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

// Message is a single outgoing email. HTML is optional.
type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

// Sender delivers messages.
type Sender interface {
	Send(ctx context.Context, m Message) error
}

var ErrInvalidMessage = errors.New("mailx: message needs a recipient and a subject")

func (m Message) validate() error {
	if m.To == "" || m.Subject == "" {
		return ErrInvalidMessage
	}
	return nil
}

// LogSender writes messages to the log instead of delivering them. It is the
// fallback when no SMTP host is configured, so links still reach a developer.
type LogSender struct {
	Logger *slog.Logger
}

func (s LogSender) Send(ctx context.Context, m Message) error {
	if err := m.validate(); err != nil {
		return err
	}
	s.Logger.InfoContext(ctx, "email not sent, no smtp host configured",
		slog.String("to", m.To),
		slog.String("subject", m.Subject),
		slog.String("body", m.Text),
	)
	return nil
}

// Outbox keeps every message in memory.
type Outbox struct {
	mu   sync.Mutex
	sent []Message
	err  error
}

func (o *Outbox) Send(_ context.Context, m Message) error {
	if err := m.validate(); err != nil {
		return err
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.err != nil {
		return o.err
	}
	o.sent = append(o.sent, m)
	return nil
}

// FailWith makes subsequent sends return err. Pass nil to recover.
func (o *Outbox) FailWith(err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.err = err
}

// Sent returns a copy of all delivered messages.
func (o *Outbox) Sent() []Message {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]Message(nil), o.sent...)
}

// Last returns the most recent message sent to addr.
func (o *Outbox) Last(addr string) (Message, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for i := len(o.sent) - 1; i >= 0; i-- {
		if o.sent[i].To == addr {
			return o.sent[i], true
		}
	}
	return Message{}, false
}
