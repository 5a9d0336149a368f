package sse

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"go-sse-broadcast/internal/infrastructure/hub"
	"go-sse-broadcast/internal/infrastructure/logger"
)

type ServerSentEventHandler struct {
	hub          *hub.Hub
	logger       logger.Logger
	writeTimeout time.Duration
}

func NewServerSentEventHandler(
	hubInstance *hub.Hub,
	logger logger.Logger,
	writeTimeout time.Duration,
) *ServerSentEventHandler {
	return &ServerSentEventHandler{
		hub:          hubInstance,
		logger:       logger.WithField("handler", "sse"),
		writeTimeout: writeTimeout,
	}
}

// Connect handles GET /events. It registers a new connection, lets the hub
// write the welcome event and blocks until the client goes away or the hub
// drops the connection.
func (h *ServerSentEventHandler) Connect(c *gin.Context) {
	if !h.hub.IsRunning() {
		h.logger.Error("Hub is not running")
		reject(c, "Service temporarily unavailable")
		return
	}

	connID := uuid.NewString()
	conn := hub.NewSSEConnection(c.Request.Context(), connID, c.Writer, h.writeTimeout, h.logger)

	if err := h.hub.RegisterConnection(conn); err != nil {
		h.logger.Errorf("Failed to register connection %s: %v", connID, err)
		_ = conn.Close()
		if !c.Writer.Written() {
			reject(c, "Failed to register connection")
		}
		return
	}

	h.logger.Infof("SSE connection %s connected and registered", connID)

	<-conn.Context().Done()

	// The hub must not touch the writer after this handler returns.
	if err := h.hub.UnregisterConnection(connID); err != nil && !errors.Is(err, hub.ErrHubNotRunning) {
		h.logger.Errorf("Failed to unregister connection %s: %v", connID, err)
	}
	h.logger.Infof("SSE connection %s disconnected", connID)
}

// reject answers with a JSON error instead of opening the stream
func reject(c *gin.Context, message string) {
	c.Writer.Header().Del("Content-Type")
	c.JSON(http.StatusServiceUnavailable, gin.H{
		"success": false,
		"error":   message,
	})
}
