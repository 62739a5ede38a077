// Package notify announces finished deployments on NATS.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"git.home.luguber.info/inful/blogsync/internal/logfields"
)

// Event is the payload published for every finished run.
type Event struct {
	RunID     string    `json:"run_id"`
	Target    string    `json:"target"`
	Kind      string    `json:"kind"`
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	Commit    string    `json:"commit,omitempty"`
	BlogURL   string    `json:"blog_url,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Notifier delivers deployment events.
type Notifier interface {
	Notify(ctx context.Context, ev Event) error
	Close()
}

// Noop discards events.
type Noop struct{}

func (Noop) Notify(context.Context, Event) error { return nil }
func (Noop) Close()                              {}

// conn is the subset of *nats.Conn the notifier uses.
type conn interface {
	PublishMsg(m *nats.Msg) error
	FlushTimeout(timeout time.Duration) error
	Close()
}

// NATSNotifier publishes events as JSON on a subject. The run ID is sent as
// the Nats-Msg-Id header so JetStream streams bound to the subject
// deduplicate redeliveries.
type NATSNotifier struct {
	conn    conn
	subject string
}

// NewNATSNotifier connects to url.
func NewNATSNotifier(url, subject string) (*NATSNotifier, error) {
	nc, err := nats.Connect(url,
		nats.Name("blogsync"),
		nats.Timeout(5*time.Second),
		nats.MaxReconnects(10),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	slog.Info("NATS notifier connected", logfields.URL(url), slog.String("subject", subject))
	return &NATSNotifier{conn: nc, subject: subject}, nil
}

func (n *NATSNotifier) Notify(ctx context.Context, ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := nats.NewMsg(n.subject)
	msg.Data = data
	msg.Header.Set(nats.MsgIdHdr, ev.RunID)
	msg.Header.Set("Blogsync-Target", ev.Target)
	if err := n.conn.PublishMsg(msg); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	timeout := 2 * time.Second
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
	}
	if err := n.conn.FlushTimeout(timeout); err != nil {
		return fmt.Errorf("failed to flush event: %w", err)
	}
	slog.Debug("Published deployment event", logfields.RunID(ev.RunID), logfields.Target(ev.Target))
	return nil
}

func (n *NATSNotifier) Close() { n.conn.Close() }
