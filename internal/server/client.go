package server

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	sendBufferSize = 128
	writeWait      = 10 * time.Second
)

// client is one websocket connection and its outbound queue.
type client struct {
	device Device
	conn   *websocket.Conn
	log    *logrus.Entry

	mu     sync.Mutex
	send   chan []byte
	closed bool
}

func newClient(conn *websocket.Conn, device Device, log *logrus.Entry) *client {
	return &client{
		device: device,
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
		log:    log.WithField("device", device.ID),
	}
}

// enqueue queues a frame for delivery. Frames are dropped when the client
// cannot keep up; state-changed broadcasts make any gap self-correcting.
func (c *client) enqueue(frame []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- frame:
	default:
		c.log.Warn("send buffer full, dropping frame")
	}
}

// writePump drains the send queue onto the socket. It exits when the queue
// is closed or a write fails.
func (c *client) writePump() {
	defer c.conn.Close()
	for frame := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
			c.log.WithError(err).Debug("write failed")
			return
		}
	}
}

// close tears the connection down. Safe to call more than once.
func (c *client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
	c.conn.Close()
}
