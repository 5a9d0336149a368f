package websocket

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"go-sse-broadcast/internal/infrastructure/hub"
	"go-sse-broadcast/internal/infrastructure/logger"
)

// WebSocketHandler lets listeners receive the event stream over WebSocket
type WebSocketHandler struct {
	hub          *hub.Hub
	logger       logger.Logger
	upgrader     websocket.Upgrader
	writeTimeout time.Duration
}

// NewWebSocketHandler creates a new WebSocket handler instance
func NewWebSocketHandler(hubInstance *hub.Hub, logger logger.Logger, writeTimeout time.Duration) *WebSocketHandler {
	return &WebSocketHandler{
		hub:    hubInstance,
		logger: logger.WithField("handler", "websocket"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Every response of the service permits cross-origin access
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		writeTimeout: writeTimeout,
	}
}

// Connect handles WebSocket connection upgrade requests
func (h *WebSocketHandler) Connect(c *gin.Context) {
	if !h.hub.IsRunning() {
		h.logger.Error("Hub is not running")
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success": false,
			"error":   "Service temporarily unavailable",
		})
		return
	}

	// Upgrade HTTP connection to WebSocket
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Errorf("Failed to upgrade connection: %v", err)
		return
	}

	connID := uuid.NewString()
	wsConn := hub.NewWebSocketConnection(c.Request.Context(), connID, conn, h.writeTimeout, h.logger)

	if err := h.hub.RegisterConnection(wsConn); err != nil {
		h.logger.Errorf("Failed to register WebSocket connection %s: %v", connID, err)
		_ = wsConn.Close()
		return
	}

	h.logger.Infof("WebSocket connection %s connected and registered", connID)

	<-wsConn.Context().Done()

	if err := h.hub.UnregisterConnection(connID); err != nil && !errors.Is(err, hub.ErrHubNotRunning) {
		h.logger.Errorf("Failed to unregister WebSocket connection %s: %v", connID, err)
	}
	h.logger.Infof("WebSocket connection %s disconnected", connID)
}
