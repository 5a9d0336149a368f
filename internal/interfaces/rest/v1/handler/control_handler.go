package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"go-sse-broadcast/internal/application/facade"
	"go-sse-broadcast/internal/infrastructure/hub"
	"go-sse-broadcast/internal/infrastructure/logger"
	"go-sse-broadcast/internal/port/inbound"
)

// ControlHandler exposes the broadcast, send-event and status operations
type ControlHandler struct {
	events inbound.EventUseCase
	logger logger.Logger
}

type PublishEventRequest struct {
	Type    string `json:"type"`
	Message string `json:"message" binding:"required"`
}

type ConnectionResponse struct {
	ID   string `json:"id"`
	Kind string `json:"kind"`
}

func NewControlHandler(events inbound.EventUseCase, logger logger.Logger) *ControlHandler {
	return &ControlHandler{
		events: events,
		logger: logger.WithField("handler", "control"),
	}
}

// Broadcast handles GET /broadcast/:message
func (h *ControlHandler) Broadcast(c *gin.Context) {
	addressed, err := h.events.Broadcast(c.Request.Context(), c.Param("message"))
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": fmt.Sprintf("Broadcasted to %d clients", addressed),
	})
}

// SendEvent handles GET /send-event/:eventType/:message
func (h *ControlHandler) SendEvent(c *gin.Context) {
	eventType := c.Param("eventType")

	addressed, err := h.events.SendEvent(c.Request.Context(), eventType, c.Param("message"))
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": fmt.Sprintf("Sent %s event to %d clients", eventType, addressed),
	})
}

// PublishEvent handles POST /api/v1/events with a JSON body. An empty type
// publishes a broadcast event.
func (h *ControlHandler) PublishEvent(c *gin.Context) {
	var req PublishEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnf("Invalid request format: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid event format",
		})
		return
	}

	var (
		addressed int
		err       error
		eventType = req.Type
	)
	if eventType == "" {
		eventType = string(hub.EventTypeBroadcast)
		addressed, err = h.events.Broadcast(c.Request.Context(), req.Message)
	} else {
		addressed, err = h.events.SendEvent(c.Request.Context(), eventType, req.Message)
	}
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"type":       eventType,
		"recipients": addressed,
	})
}

// Status handles GET /status
func (h *ControlHandler) Status(c *gin.Context) {
	status := h.events.Status(c.Request.Context())

	c.JSON(http.StatusOK, gin.H{
		"connectedClients": status.ConnectedClients,
		"uptime":           status.Uptime.Seconds(),
		"timestamp":        hub.FormatTimestamp(status.Timestamp),
	})
}

// Health handles GET /hub/status
func (h *ControlHandler) Health(c *gin.Context) {
	status := h.events.Status(c.Request.Context())

	code := http.StatusOK
	health := "healthy"
	if !status.HubRunning {
		code = http.StatusServiceUnavailable
		health = "unavailable"
	}

	c.JSON(code, gin.H{
		"status":      health,
		"hub_running": status.HubRunning,
		"connections": status.ConnectedClients,
	})
}

// Connections handles GET /api/v1/connections[?kind=sse|websocket]
func (h *ControlHandler) Connections(c *gin.Context) {
	conns, err := h.events.Connections(c.Request.Context(), c.Query("kind"))
	if err != nil {
		h.fail(c, err)
		return
	}

	resp := make([]ConnectionResponse, len(conns))
	for i, conn := range conns {
		resp[i] = ConnectionResponse{ID: conn.ID, Kind: conn.Kind}
	}

	c.JSON(http.StatusOK, gin.H{
		"total_connections": len(resp),
		"connections":       resp,
		"hub_running":       true,
	})
}

// MissingParameter rejects routes where a required path parameter is absent
func (h *ControlHandler) MissingParameter(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   fmt.Sprintf("%s is required", name),
		})
	}
}

func (h *ControlHandler) fail(c *gin.Context, err error) {
	code := statusFor(err)
	if code >= http.StatusInternalServerError {
		h.logger.Errorf("%s %s failed: %v", c.Request.Method, c.FullPath(), err)
	}

	c.JSON(code, gin.H{
		"success": false,
		"error":   err.Error(),
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, facade.ErrMissingMessage),
		errors.Is(err, facade.ErrMissingEventType),
		errors.Is(err, facade.ErrInvalidEventType):
		return http.StatusBadRequest
	case errors.Is(err, hub.ErrHubNotRunning):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
