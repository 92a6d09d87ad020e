package hub

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	sendBufferSize = 256
	writeWait      = 10 * time.Second
)

// Client is one authenticated websocket connection. Outbound frames
// flow through the buffered send channel so broadcasts never block on
// a single connection.
type Client struct {
	hub  *Hub
	conn *websocket.Conn

	send      chan []byte
	closeOnce sync.Once
}

func newClient(h *Hub, conn *websocket.Conn) *Client {
	return &Client{
		hub:  h,
		conn: conn,
		send: make(chan []byte, sendBufferSize),
	}
}

// enqueue hands a frame to the write pump. It reports false when the
// buffer is full, which marks the client for removal.
func (c *Client) enqueue(msg []byte) bool {
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

func (c *Client) close() {
	c.closeOnce.Do(func() {
		close(c.send)
		c.conn.Close()
	})
}

// readPump consumes client requests until the connection drops.
// Unparseable or unknown frames are ignored.
func (c *Client) readPump() {
	defer c.hub.remove(c)

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var req inbound
		if err := json.Unmarshal(raw, &req); err != nil {
			continue
		}

		switch req.Type {
		case msgPing:
			if msg, err := marshalEnvelope(msgPong, nil, true); err == nil {
				c.hub.deliver(c, msg)
			}
		case msgRequestState:
			if msg, err := marshalEnvelope(msgStateUpdate, c.hub.store.Current(), true); err == nil {
				c.hub.deliver(c, msg)
			}
		}
	}
}

// writePump drains the send channel onto the wire. It exits when the
// channel is closed or a write fails, either way the connection is
// torn down.
func (c *Client) writePump() {
	defer c.hub.remove(c)

	for msg := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}
