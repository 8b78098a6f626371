package network

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// writeWait bounds how long a single write may block
	writeWait = 10 * time.Second

	// pongWait is how long the peer has to answer a ping
	pongWait = 60 * time.Second

	// pingPeriod must be shorter than pongWait
	pingPeriod = (pongWait * 9) / 10

	// maxMessageSize bounds inbound frames; even large maps stay far
	// below this
	maxMessageSize = 256 * 1024

	// sendQueueSize buffers outgoing messages per connection
	sendQueueSize = 256
)

// MessageHandler interface for handling messages
type MessageHandler interface {
	HandleMessage(conn *Connection, message []byte)
}

// Connection wraps the WebSocket connection with a buffered send
// queue and keepalive handling
type Connection struct {
	ws   *websocket.Conn
	send chan []byte

	mutex  sync.Mutex
	closed bool
}

// NewConnection creates a new connection wrapper
func NewConnection(ws *websocket.Conn) *Connection {
	return &Connection{
		ws:   ws,
		send: make(chan []byte, sendQueueSize),
	}
}

// ReadPump reads messages from the WebSocket connection and hands
// them to the handler until the connection drops
func (c *Connection) ReadPump(h MessageHandler) {
	defer func() {
		c.ws.Close()
	}()

	c.ws.SetReadLimit(maxMessageSize)
	c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		c.ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("Error reading message: %v", err)
			}
			break
		}

		// Handle the incoming message
		h.HandleMessage(c, message)
	}
}

// WritePump writes queued messages to the WebSocket connection and
// pings the peer until the connection drops
func (c *Connection) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.ws.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Send queue closed, tell the peer and exit
				c.ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.ws.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// SendMessage queues a message for delivery to the client. A client
// that stops draining its queue is disconnected instead of blocking
// the caller
func (c *Connection) SendMessage(msg interface{}) error {
	messageBytes, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()
	if c.closed {
		return nil
	}

	select {
	case c.send <- messageBytes:
	default:
		c.closed = true
		close(c.send)
	}
	return nil
}

// Close shuts the send queue, which ends the write pump and closes
// the socket. Safe to call more than once
func (c *Connection) Close() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}
