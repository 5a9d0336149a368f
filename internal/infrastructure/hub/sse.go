package hub

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go-sse-broadcast/internal/infrastructure/logger"
)

// SSEConnection implements the Connection interface for Server-Sent Events
type SSEConnection struct {
	id         string
	writer     http.ResponseWriter
	controller *http.ResponseController

	// Zero disables the per-write deadline
	writeTimeout time.Duration

	ctx    context.Context
	cancel context.CancelFunc

	closed   bool
	closedMu sync.RWMutex

	logger logger.Logger
}

// NewSSEConnection creates a new SSE connection bound to w. The connection is
// closed when ctx (usually the request context) is cancelled. Response
// headers are expected to be set by the caller.
func NewSSEConnection(
	ctx context.Context,
	id string,
	w http.ResponseWriter,
	writeTimeout time.Duration,
	logger logger.Logger,
) *SSEConnection {
	rctx, cancel := context.WithCancel(ctx)

	return &SSEConnection{
		id:           id,
		writer:       w,
		controller:   http.NewResponseController(w),
		writeTimeout: writeTimeout,
		ctx:          rctx,
		cancel:       cancel,
		logger:       logger.WithField("connection_id", id),
	}
}

// ID returns unique connection identifier
func (c *SSEConnection) ID() string {
	return c.id
}

// Kind returns the connection type
func (c *SSEConnection) Kind() string {
	return "sse"
}

// Send writes one event frame and flushes it to the client. A failed write
// closes the connection.
func (c *SSEConnection) Send(_ context.Context, event *Event) error {
	if c.IsClosed() {
		return ErrConnectionClosed
	}

	if c.writeTimeout > 0 {
		err := c.controller.SetWriteDeadline(time.Now().Add(c.writeTimeout))
		if err != nil && !errors.Is(err, http.ErrNotSupported) {
			c.Close()
			return fmt.Errorf("failed to set write deadline: %w", err)
		}
	}

	if err := WriteEvent(c.writer, event); err != nil {
		c.logger.Errorf("Failed to write %s event: %v", event.Type, err)
		c.Close()
		return err
	}

	// Flush the data to ensure it's sent immediately
	if err := c.controller.Flush(); err != nil && !errors.Is(err, http.ErrNotSupported) {
		c.logger.Errorf("Failed to flush %s event: %v", event.Type, err)
		c.Close()
		return fmt.Errorf("failed to flush: %w", err)
	}

	return nil
}

// Close marks the connection closed and cancels its context
func (c *SSEConnection) Close() error {
	c.closedMu.Lock()
	defer c.closedMu.Unlock()

	if c.closed {
		return nil
	}

	c.closed = true
	c.cancel()

	c.logger.Debug("SSE connection closed")
	return nil
}

// IsClosed returns true if connection is closed
func (c *SSEConnection) IsClosed() bool {
	c.closedMu.RLock()
	defer c.closedMu.RUnlock()
	return c.closed || c.ctx.Err() != nil
}

// Context returns the connection's context (for cancellation)
func (c *SSEConnection) Context() context.Context {
	return c.ctx
}
