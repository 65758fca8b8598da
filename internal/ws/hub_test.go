package ws

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testClient builds a Client without a live connection; Join/Leave/Broadcast
// only touch the send channel and board id.
func testClient(boardID int64, buf int) *Client {
	return &Client{send: make(chan []byte, buf), boardID: boardID}
}

func recvOne(t *testing.T, c *Client) []byte {
	t.Helper()
	select {
	case msg := <-c.send:
		return msg
	default:
		t.Fatal("expected a queued message")
		return nil
	}
}

func TestHubJoinLeave(t *testing.T) {
	h := NewHub()
	a := testClient(1, sendBufSize)
	b := testClient(1, sendBufSize)

	h.Join(a)
	h.Join(b)
	assert.Equal(t, 2, h.Count(1))

	h.Leave(a)
	assert.Equal(t, 1, h.Count(1))

	// Leaving twice is a no-op.
	h.Leave(a)
	assert.Equal(t, 1, h.Count(1))

	_, open := <-a.send
	assert.False(t, open, "send channel closed on leave")
}

func TestHubBroadcastFanOut(t *testing.T) {
	h := NewHub()
	a := testClient(1, sendBufSize)
	b := testClient(1, sendBufSize)
	other := testClient(2, sendBufSize)
	h.Join(a)
	h.Join(b)
	h.Join(other)

	h.Broadcast(1, OutEnvelope{Type: EventCardCreated, Payload: map[string]int{"id": 7}})

	msgA := recvOne(t, a)
	msgB := recvOne(t, b)
	assert.JSONEq(t, `{"type":"card.created","payload":{"id":7}}`, string(msgA))
	assert.Equal(t, msgA, msgB, "every group member gets the same frame")
	assert.Empty(t, other.send, "other boards are not notified")
}

func TestHubBroadcastIncludesOriginator(t *testing.T) {
	h := NewHub()
	sender := testClient(1, sendBufSize)
	h.Join(sender)

	h.Broadcast(1, OutEnvelope{Type: EventColumnDeleted, Payload: map[string]int{"id": 3}})

	require.Len(t, sender.send, 1)
}

func TestHubBroadcastDropsFullClient(t *testing.T) {
	h := NewHub()
	slow := testClient(1, 1)
	fast := testClient(1, sendBufSize)
	h.Join(slow)
	h.Join(fast)

	slow.send <- []byte("backlog")

	h.Broadcast(1, OutEnvelope{Type: EventCardUpdated, Payload: map[string]int{"id": 1}})

	assert.Equal(t, 1, h.Count(1), "the stalled client is evicted")
	require.Len(t, fast.send, 1)
}

func TestHubEvictedClientStillAcceptsSends(t *testing.T) {
	h := NewHub()
	slow := testClient(1, 1)
	h.Join(slow)

	slow.send <- []byte("backlog")
	h.Broadcast(1, OutEnvelope{Type: EventCardCreated, Payload: map[string]int{"id": 1}})
	require.Equal(t, 0, h.Count(1))

	// The read loop keeps running after eviction; its error replies and
	// further broadcasts must degrade to no-ops, not panic on the closed
	// channel.
	assert.NotPanics(t, func() {
		assert.False(t, slow.sendEnvelope(ErrorEnvelope("title is required")))
		h.Broadcast(1, OutEnvelope{Type: EventCardUpdated, Payload: map[string]int{"id": 1}})
	})
}

func TestHubLeaveConcurrentWithBroadcast(t *testing.T) {
	h := NewHub()
	c := testClient(1, 1)
	h.Join(c)
	c.send <- []byte("backlog")

	// Two broadcasts race to evict the same stalled client; both take the
	// snapshot before either closes it.
	done := make(chan struct{})
	go func() {
		h.Broadcast(1, OutEnvelope{Type: EventCardCreated, Payload: map[string]int{"id": 1}})
		close(done)
	}()
	h.Broadcast(1, OutEnvelope{Type: EventCardUpdated, Payload: map[string]int{"id": 1}})
	<-done

	assert.Equal(t, 0, h.Count(1))
}

func TestHubCloseAll(t *testing.T) {
	h := NewHub()
	a := testClient(1, sendBufSize)
	b := testClient(2, sendBufSize)
	h.Join(a)
	h.Join(b)

	h.CloseAll()

	assert.Equal(t, 0, h.Count(1))
	assert.Equal(t, 0, h.Count(2))
	_, open := <-a.send
	assert.False(t, open)
}

func TestClientSendEnvelope(t *testing.T) {
	c := testClient(1, 1)

	ok := c.sendEnvelope(ErrorEnvelope("title is required"))
	require.True(t, ok)
	assert.JSONEq(t, `{"type":"error","payload":{"message":"title is required"}}`, string(recvOne(t, c)))

	c.send <- []byte("fill")
	assert.False(t, c.sendEnvelope(ErrorEnvelope("again")), "full buffer drops the envelope")
}
