package sse

import (
	"time"

	"github.com/gin-gonic/gin"

	"go-sse-broadcast/internal/infrastructure/hub"
	"go-sse-broadcast/internal/infrastructure/logger"
)

func InitSSERouter(logger logger.Logger, hubInstance *hub.Hub, rg *gin.RouterGroup, writeTimeout time.Duration) {
	sseHandler := NewServerSentEventHandler(hubInstance, logger, writeTimeout)

	// SSE connection endpoint
	rg.GET("/events", SSEHeadersMiddleware(), sseHandler.Connect)
}
