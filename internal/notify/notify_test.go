package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	msgs       []*nats.Msg
	publishErr error
	closed     bool
}

func (f *fakeConn) PublishMsg(m *nats.Msg) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.msgs = append(f.msgs, m)
	return nil
}
func (f *fakeConn) FlushTimeout(time.Duration) error { return nil }
func (f *fakeConn) Close()                           { f.closed = true }

func TestNATSNotifier_PublishesJSON(t *testing.T) {
	fc := &fakeConn{}
	n := &NATSNotifier{conn: fc, subject: "blogsync.deployments"}
	ev := Event{RunID: "r1", Target: "human", Kind: "deployed", Success: true, Message: "Deployment completed successfully", Timestamp: time.Unix(1, 0).UTC()}

	require.NoError(t, n.Notify(context.Background(), ev))
	require.Len(t, fc.msgs, 1)

	msg := fc.msgs[0]
	assert.Equal(t, "blogsync.deployments", msg.Subject)
	assert.Equal(t, "r1", msg.Header.Get(nats.MsgIdHdr))
	assert.Equal(t, "human", msg.Header.Get("Blogsync-Target"))

	var got Event
	require.NoError(t, json.Unmarshal(msg.Data, &got))
	assert.Equal(t, ev, got)

	n.Close()
	assert.True(t, fc.closed)
}

func TestNATSNotifier_PublishError(t *testing.T) {
	n := &NATSNotifier{conn: &fakeConn{publishErr: errors.New("connection closed")}, subject: "s"}
	require.Error(t, n.Notify(context.Background(), Event{RunID: "r"}))
}

func TestNewNATSNotifier_Unreachable(t *testing.T) {
	_, err := NewNATSNotifier("nats://127.0.0.1:1", "s")
	require.Error(t, err)
}

func TestNoop(t *testing.T) {
	var n Notifier = Noop{}
	assert.NoError(t, n.Notify(context.Background(), Event{}))
	n.Close()
}
