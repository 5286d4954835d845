package chathub

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"welcomewindow/backend/internal/config"
	"welcomewindow/backend/internal/models"
	"welcomewindow/backend/internal/session"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// SocketOptions are the keep-alive and buffering settings of one connection.
type SocketOptions struct {
	PingTimeout  time.Duration
	PingInterval time.Duration
	SendBuffer   int
	MaxFrameSize int64
}

// WebSocketClient implements Client over a gorilla/websocket connection.
type WebSocketClient struct {
	id   string
	sess session.Session
	conn *websocket.Conn
	hub  *Hub
	send chan models.Event
	opts SocketOptions

	// ctx outlives the HTTP request that performed the upgrade.
	ctx       context.Context
	closeOnce sync.Once
}

// NewWebSocketClient wraps an upgraded connection and registers it with the hub.
func NewWebSocketClient(ctx context.Context, conn *websocket.Conn, hub *Hub, sess session.Session, opts SocketOptions) *WebSocketClient {
	if opts.PingTimeout <= 0 {
		opts.PingTimeout = config.DefaultPingTimeout
	}
	if opts.PingInterval <= 0 || opts.PingInterval >= opts.PingTimeout {
		opts.PingInterval = (opts.PingTimeout * 9) / 10
	}
	if opts.SendBuffer <= 0 {
		opts.SendBuffer = config.DefaultSendBuffer
	}
	if opts.MaxFrameSize <= 0 {
		opts.MaxFrameSize = config.DefaultMaxFrameSize
	}
	return &WebSocketClient{
		id:   uuid.NewString(),
		sess: sess,
		conn: conn,
		hub:  hub,
		send: make(chan models.Event, opts.SendBuffer),
		opts: opts,
		ctx:  ctx,
	}
}

func (c *WebSocketClient) ConnID() string                      { return c.id }
func (c *WebSocketClient) Session() session.Session            { return c.sess }
func (c *WebSocketClient) GetSendChannel() chan<- models.Event { return c.send }

// Run announces the connection to the hub and starts the pumps.
func (c *WebSocketClient) Run() {
	go c.writePump()
	c.hub.Connect(c.ctx, c)
	go c.readPump()
}

// Close closes the send channel, which stops the write pump.
func (c *WebSocketClient) Close() {
	c.closeOnce.Do(func() {
		close(c.send)
	})
}

// readPump handles inbound events one at a time. A read error, including an
// expired pong deadline, ends the connection through the hub.
func (c *WebSocketClient) readPump() {
	defer func() {
		c.hub.Disconnect(c.ctx, c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(c.opts.MaxFrameSize)
	c.conn.SetReadDeadline(time.Now().Add(c.opts.PingTimeout))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(c.opts.PingTimeout))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WARN: [WS] read error on %s: %v", c.id, err)
			}
			return
		}

		var ev models.InboundEvent
		if err := json.Unmarshal(message, &ev); err != nil {
			log.Printf("WARN: [WS] malformed event from %s: %v", c.id, err)
			c.hub.sendError(c, "error.invalid_payload")
			continue
		}
		c.hub.Handle(c.ctx, c, ev)
	}
}

// writePump writes queued events as separate text frames and keeps the
// connection alive with pings.
func (c *WebSocketClient) writePump() {
	ticker := time.NewTicker(c.opts.PingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case ev, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(config.WriteWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(ev); err != nil {
				log.Printf("WARN: [WS] write error on %s: %v", c.id, err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(config.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
