package hub

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"go-sse-broadcast/internal/infrastructure/logger"
)

const (
	wsControlTimeout = 5 * time.Second
	wsPongTimeout    = 60 * time.Second
	// Send pings more often than the pong timeout
	wsPingInterval = 54 * time.Second
)

// WebSocketConnection implements the Connection interface for WebSocket
// connections. Each event is written as one JSON text frame.
type WebSocketConnection struct {
	id   string
	conn *websocket.Conn

	ctx    context.Context
	cancel context.CancelFunc

	closed   bool
	closedMu sync.RWMutex

	logger logger.Logger

	// Zero disables the per-write deadline
	writeTimeout time.Duration
}

// NewWebSocketConnection wraps an upgraded connection and starts its read
// and ping routines
func NewWebSocketConnection(
	ctx context.Context,
	id string,
	conn *websocket.Conn,
	writeTimeout time.Duration,
	logger logger.Logger,
) *WebSocketConnection {
	rctx, cancel := context.WithCancel(ctx)

	wsConn := &WebSocketConnection{
		id:           id,
		conn:         conn,
		ctx:          rctx,
		cancel:       cancel,
		logger:       logger.WithField("connection_id", id),
		writeTimeout: writeTimeout,
	}

	// Set read deadline and pong handler for keep-alive
	conn.SetReadDeadline(time.Now().Add(wsPongTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongTimeout))
	})

	go wsConn.readPump()
	go wsConn.pingPump()

	return wsConn
}

// ID returns unique connection identifier
func (c *WebSocketConnection) ID() string {
	return c.id
}

// Kind returns the connection type
func (c *WebSocketConnection) Kind() string {
	return "websocket"
}

// Send writes the event as a JSON text frame
func (c *WebSocketConnection) Send(_ context.Context, event *Event) error {
	if c.IsClosed() {
		return ErrConnectionClosed
	}

	if c.writeTimeout > 0 {
		c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	}

	if err := c.conn.WriteJSON(event); err != nil {
		c.logger.Errorf("Failed to write %s event: %v", event.Type, err)
		c.Close()
		return fmt.Errorf("write websocket frame: %w", err)
	}

	return nil
}

// Close sends a close frame and closes the underlying connection
func (c *WebSocketConnection) Close() error {
	c.closedMu.Lock()
	defer c.closedMu.Unlock()

	if c.closed {
		return nil
	}

	c.closed = true
	c.cancel()

	// WriteControl may run concurrently with the data writer
	c.conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(wsControlTimeout),
	)
	err := c.conn.Close()

	c.logger.Debug("WebSocket connection closed")
	return err
}

// IsClosed returns true if connection is closed
func (c *WebSocketConnection) IsClosed() bool {
	c.closedMu.RLock()
	defer c.closedMu.RUnlock()
	return c.closed || c.ctx.Err() != nil
}

// Context returns the connection's context (for cancellation)
func (c *WebSocketConnection) Context() context.Context {
	return c.ctx
}

// readPump drains inbound frames so control frames get processed and a
// peer close is noticed. Listeners have nothing to say to the server.
func (c *WebSocketConnection) readPump() {
	defer c.Close()

	for {
		messageType, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(
				err,
				websocket.CloseGoingAway,
				websocket.CloseNormalClosure,
				websocket.CloseAbnormalClosure,
			) {
				c.logger.Errorf("WebSocket error: %v", err)
			}
			return
		}

		c.logger.Debugf("Ignoring inbound frame (type %d, %d bytes)", messageType, len(data))
	}
}

// pingPump sends protocol pings until the connection is closed
func (c *WebSocketConnection) pingPump() {
	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			err := c.conn.WriteControl(
				websocket.PingMessage,
				nil,
				time.Now().Add(wsControlTimeout),
			)
			if err != nil {
				c.logger.Errorf("Failed to send ping: %v", err)
				c.Close()
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}
