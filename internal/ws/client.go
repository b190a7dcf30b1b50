// Package ws provides the WebSocket push subscriber for session events.
package ws

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/computer-agent/backend/internal/model"
)

// sendBufferSize is the per-client outbound buffer. A client that cannot
// drain this many events is considered dead.
const sendBufferSize = 256

// Client is a push-style hub subscriber over a WebSocket connection.
// The hub writes into the send buffer; the write pump drains it to the wire.
type Client struct {
	conn *websocket.Conn
	send chan []byte

	mu     sync.Mutex
	closed bool
}

// NewClient wraps an upgraded connection.
func NewClient(conn *websocket.Conn) *Client {
	return &Client{
		conn: conn,
		send: make(chan []byte, sendBufferSize),
	}
}

// Send queues an event for delivery. It fails when the client is closed or
// its buffer is full, after which the hub drops the client.
func (c *Client) Send(ev model.Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return model.ErrSubscriberClosed
	}

	select {
	case c.send <- data:
		return nil
	default:
		c.closeLocked()
		return model.ErrSubscriberFull
	}
}

// Close stops deliveries. The write pump sees the channel close, sends a
// close frame and tears down the connection. Safe to call more than once.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeLocked()
}

func (c *Client) closeLocked() {
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// IsClosed returns true if the client is closed.
func (c *Client) IsClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Conn returns the underlying WebSocket connection.
func (c *Client) Conn() *websocket.Conn {
	return c.conn
}

// SendChan returns the channel the write pump drains.
func (c *Client) SendChan() <-chan []byte {
	return c.send
}
