package ws

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	pongWait     = 60 * time.Second
	maxReadBytes = 512
)

// Client is one subscriber to occupancy updates.
type Client struct {
	id           uuid.UUID
	ws           *websocket.Conn
	send         chan []byte
	done         chan struct{}
	closeOnce    sync.Once
	writeTimeout time.Duration
	logger       *zap.Logger
	onClose      func(id uuid.UUID)
}

func newClient(ws *websocket.Conn, writeTimeout time.Duration, logger *zap.Logger, onClose func(uuid.UUID)) *Client {
	id := uuid.New()
	return &Client{
		id:           id,
		ws:           ws,
		send:         make(chan []byte, 16),
		done:         make(chan struct{}),
		writeTimeout: writeTimeout,
		logger:       logger.With(zap.String("client_id", id.String())),
		onClose:      onClose,
	}
}

// ID returns identifier.
func (c *Client) ID() uuid.UUID {
	return c.id
}

// Send enqueues a message. Slow clients drop messages instead of blocking the hub.
func (c *Client) Send(msg []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- msg:
		return true
	default:
		c.logger.Warn("dropping occupancy update, buffer full")
		return false
	}
}

// Ping writes a control frame. Safe to call concurrently with the write pump.
func (c *Client) Ping() error {
	return c.ws.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(c.writeTimeout))
}

// run blocks until the peer goes away or Close is called.
func (c *Client) run() {
	go c.writePump()
	c.readPump()
}

// Subscribers only listen; inbound frames are read to process pongs and closes.
func (c *Client) readPump() {
	defer c.Close()
	c.ws.SetReadLimit(maxReadBytes)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.ws.ReadMessage(); err != nil {
			c.logger.Debug("subscriber read closed", zap.Error(err))
			return
		}
	}
}

func (c *Client) writePump() {
	for {
		select {
		case <-c.done:
			return
		case msg := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(c.writeTimeout))
			if err := c.ws.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.logger.Debug("subscriber write failed", zap.Error(err))
				c.Close()
				return
			}
		}
	}
}

// Close tears the connection down once.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(c.writeTimeout))
		_ = c.ws.Close()
		if c.onClose != nil {
			c.onClose(c.id)
		}
	})
}
