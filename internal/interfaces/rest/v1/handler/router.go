package handler

import (
	"github.com/gin-gonic/gin"

	"go-sse-broadcast/internal/infrastructure/logger"
	"go-sse-broadcast/internal/port/inbound"
)

// InitControlRouter registers the control surface on rg
func InitControlRouter(logger logger.Logger, events inbound.EventUseCase, rg *gin.RouterGroup) {
	controlHandler := NewControlHandler(events, logger)

	rg.GET("/broadcast", controlHandler.MissingParameter("message"))
	rg.GET("/broadcast/:message", controlHandler.Broadcast)
	rg.GET("/send-event/:eventType", controlHandler.MissingParameter("message"))
	rg.GET("/send-event/:eventType/:message", controlHandler.SendEvent)
	rg.GET("/status", controlHandler.Status)
	rg.GET("/hub/status", controlHandler.Health)

	apiGroup := rg.Group("/api/v1")
	{
		apiGroup.POST("/events", controlHandler.PublishEvent)
		apiGroup.GET("/connections", controlHandler.Connections)
	}
}
