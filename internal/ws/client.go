package ws

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/teamboard/teamboard/internal/auth"
)

const (
	// writeTimeout is the deadline for a single write to a client.
	writeTimeout = 10 * time.Second

	// pongWait is how long to wait for a pong response before treating the
	// connection as dead.
	pongWait = 60 * time.Second

	// pingPeriod controls how often the server sends WebSocket ping frames.
	// Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// maxMessageSize bounds a single inbound frame.
	maxMessageSize = 64 << 10

	// sendBufSize is the per-client outgoing message buffer depth.
	sendBufSize = 32
)

// Client represents one authenticated WebSocket connection on one board.
// The send channel is guarded by mu: the read loop and concurrent broadcasts
// may still try to queue frames after the hub has evicted the client, so
// every send and the close itself go through trySend/closeSend.
type Client struct {
	conn     *websocket.Conn
	boardID  int64
	identity auth.Identity

	mu     sync.Mutex
	send   chan []byte
	closed bool
}

func newClient(conn *websocket.Conn, boardID int64, identity auth.Identity) *Client {
	return &Client{
		conn:     conn,
		send:     make(chan []byte, sendBufSize),
		boardID:  boardID,
		identity: identity,
	}
}

// trySend queues a frame for the write pump. Returns false if the client has
// been closed or its buffer is full; it never panics on a closed client.
func (c *Client) trySend(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

// closeSend closes the send channel exactly once. Safe to call concurrently
// with trySend and safe to call repeatedly.
func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// sendEnvelope queues an envelope for this client only. Returns false if the
// client is closed or its buffer is full.
func (c *Client) sendEnvelope(env OutEnvelope) bool {
	data, err := json.Marshal(env)
	if err != nil {
		return false
	}
	return c.trySend(data)
}

// writePump drains the client's send channel and forwards messages to the
// WebSocket connection. It also sends periodic ping frames. Runs in its own
// goroutine per client.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !ok {
				// Channel was closed (hub shutdown or client removed).
				c.conn.WriteMessage(websocket.CloseMessage, []byte{}) //nolint:errcheck
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
