package main

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"go-sse-broadcast/internal/infrastructure/hub"
	"go-sse-broadcast/internal/infrastructure/logger"
	"go-sse-broadcast/internal/interfaces/rest/v1/handler"
	"go-sse-broadcast/internal/interfaces/sse"
	"go-sse-broadcast/internal/interfaces/websocket"
	"go-sse-broadcast/internal/port/inbound"
)

func InitRouter(
	hubInstance *hub.Hub,
	events inbound.EventUseCase,
	log logger.Logger,
	writeTimeout time.Duration,
) http.Handler {
	router := gin.New()
	router.Use(requestLogger(log))
	router.Use(gin.Recovery())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Cache-Control")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	rootGroup := router.Group("")

	handler.InitControlRouter(log, events, rootGroup)
	sse.InitSSERouter(log, hubInstance, rootGroup, writeTimeout)
	websocket.InitWebSocketRouter(log, hubInstance, rootGroup, writeTimeout)

	return router
}

// requestLogger logs one line per request once it completes. For streams
// that is when the listener disconnects.
func requestLogger(log logger.Logger) gin.HandlerFunc {
	httpLog := log.WithField("component", "http")

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := httpLog.WithFields(logger.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
			"client":  c.ClientIP(),
		})
		if len(c.Errors) > 0 {
			entry.Error(c.Errors.String())
			return
		}
		entry.Debug("request completed")
	}
}
