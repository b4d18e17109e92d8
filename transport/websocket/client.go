package websocket

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer. Larger frames close the
	// connection with 1009.
	maxMessageSize = 4096

	// Outbound frames buffered per client before delivery fails.
	sendBufferSize = 256
)

var (
	ErrSendQueueFull = errors.New("send queue full")
	ErrClientClosed  = errors.New("client closed")
)

// Connection states
const (
	stateConnecting int32 = iota
	stateJoined
	stateClosed
)

// Client is one websocket connection. It implements room.Connection.
type Client struct {
	id   string
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	state atomic.Int32

	mu        sync.Mutex
	closed    bool
	closeCode int
}

func newClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		id:        uuid.NewString(),
		hub:       hub,
		conn:      conn,
		send:      make(chan []byte, sendBufferSize),
		closeCode: websocket.CloseNormalClosure,
	}
}

// ID returns the connection id, also used as the player id
func (c *Client) ID() string {
	return c.id
}

// Send queues one text frame without blocking
func (c *Client) Send(payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClientClosed
	}
	select {
	case c.send <- payload:
		return nil
	default:
		return ErrSendQueueFull
	}
}

// IsOpen reports whether frames can still be queued
func (c *Client) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.closed
}

// shutdown stops accepting frames; writePump then sends a close frame with
// code and drops the connection. Only the first call takes effect.
func (c *Client) shutdown(code int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}
	c.closed = true
	c.closeCode = code
	close(c.send)
	return true
}

// readPump delivers inbound frames to the hub until the connection fails.
func (c *Client) readPump() {
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			switch {
			case isClientClose(err):
				c.hub.onClose(c)
			case errors.Is(err, websocket.ErrReadLimit):
				c.hub.onOversized(c)
			default:
				c.hub.onTransportError(c, err)
			}
			return
		}
		c.hub.onMessage(c, data)
	}
}

// writePump sends queued frames one per websocket message and keeps the
// connection alive with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.mu.Lock()
				code := c.closeCode
				c.mu.Unlock()
				c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(code, closeText(code)))
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// isClientClose separates orderly closes initiated by the peer from faults.
func isClientClose(err error) bool {
	return websocket.IsCloseError(err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway,
		websocket.CloseNoStatusReceived,
	)
}

func closeText(code int) string {
	switch code {
	case websocket.CloseInternalServerErr:
		return "server error"
	case websocket.CloseGoingAway:
		return "server shutting down"
	case websocket.CloseMessageTooBig:
		return "message too big"
	default:
		return ""
	}
}
