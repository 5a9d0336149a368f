package websocket

import (
	"time"

	"github.com/gin-gonic/gin"

	"go-sse-broadcast/internal/infrastructure/hub"
	"go-sse-broadcast/internal/infrastructure/logger"
)

// InitWebSocketRouter initializes WebSocket routes
func InitWebSocketRouter(logger logger.Logger, hubInstance *hub.Hub, rg *gin.RouterGroup, writeTimeout time.Duration) {
	wsHandler := NewWebSocketHandler(hubInstance, logger, writeTimeout)

	rg.GET("/ws", wsHandler.Connect)
}
