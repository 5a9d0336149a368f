package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-sse-broadcast/internal/application/facade"
	"go-sse-broadcast/internal/infrastructure/hub"
	"go-sse-broadcast/internal/infrastructure/logger"
	"go-sse-broadcast/internal/port/inbound"
)

func TestControlHandler_Broadcast(t *testing.T) {
	events := &stubEvents{addressed: 2}
	router := newRouter(events)

	code, body := do(t, router, http.MethodGet, "/broadcast/hi", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Broadcasted to 2 clients", body["message"])
	assert.Equal(t, []string{"broadcast:hi"}, events.calls)
}

func TestControlHandler_SendEvent(t *testing.T) {
	events := &stubEvents{addressed: 1}
	router := newRouter(events)

	code, body := do(t, router, http.MethodGet, "/send-event/promo/sale", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Sent promo event to 1 clients", body["message"])
	assert.Equal(t, []string{"promo:sale"}, events.calls)
}

func TestControlHandler_MissingParameters(t *testing.T) {
	router := newRouter(&stubEvents{})

	for _, path := range []string{"/broadcast", "/send-event/promo"} {
		t.Run(path, func(t *testing.T) {
			code, body := do(t, router, http.MethodGet, path, "")
			assert.Equal(t, http.StatusBadRequest, code)
			assert.Equal(t, false, body["success"])
		})
	}
}

func TestControlHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "validation", err: facade.ErrMissingMessage, want: http.StatusBadRequest},
		{name: "invalid type", err: fmt.Errorf("%w: line break", facade.ErrInvalidEventType), want: http.StatusBadRequest},
		{name: "hub stopped", err: fmt.Errorf("broadcast: %w", hub.ErrHubNotRunning), want: http.StatusServiceUnavailable},
		{name: "other", err: fmt.Errorf("boom"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newRouter(&stubEvents{err: tt.err})

			code, body := do(t, router, http.MethodGet, "/broadcast/hi", "")
			assert.Equal(t, tt.want, code)
			assert.Equal(t, tt.err.Error(), body["error"])
		})
	}
}

func TestControlHandler_PublishEvent(t *testing.T) {
	events := &stubEvents{addressed: 3}
	router := newRouter(events)

	code, body := do(t, router, http.MethodPost, "/api/v1/events", `{"type":"promo","message":"sale"}`)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "promo", body["type"])
	assert.Equal(t, float64(3), body["recipients"])

	code, body = do(t, router, http.MethodPost, "/api/v1/events", `{"message":"hi"}`)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "broadcast", body["type"])

	code, _ = do(t, router, http.MethodPost, "/api/v1/events", `{"type":"promo"}`)
	assert.Equal(t, http.StatusBadRequest, code)

	assert.Equal(t, []string{"promo:sale", "broadcast:hi"}, events.calls)
}

func TestControlHandler_Status(t *testing.T) {
	now := time.Date(2024, 5, 6, 7, 8, 9, 10_000_000, time.UTC)
	router := newRouter(&stubEvents{status: inbound.Status{
		ConnectedClients: 0,
		Uptime:           90 * time.Second,
		Timestamp:        now,
		HubRunning:       true,
	}})

	code, body := do(t, router, http.MethodGet, "/status", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(0), body["connectedClients"])
	assert.Equal(t, float64(90), body["uptime"])
	assert.Equal(t, "2024-05-06T07:08:09.010Z", body["timestamp"])
}

func TestControlHandler_Health(t *testing.T) {
	router := newRouter(&stubEvents{status: inbound.Status{HubRunning: true, ConnectedClients: 4}})
	code, body := do(t, router, http.MethodGet, "/hub/status", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, float64(4), body["connections"])

	router = newRouter(&stubEvents{})
	code, body = do(t, router, http.MethodGet, "/hub/status", "")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, false, body["hub_running"])
}

func TestControlHandler_Connections(t *testing.T) {
	events := &stubEvents{conns: []inbound.ConnectionInfo{
		{ID: "a", Kind: "sse"},
		{ID: "b", Kind: "websocket"},
	}}
	router := newRouter(events)

	code, body := do(t, router, http.MethodGet, "/api/v1/connections?kind=sse", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(1), body["total_connections"])
	assert.Equal(t, []string{"kind:sse"}, events.calls)
}

func newRouter(events inbound.EventUseCase) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	InitControlRouter(discardLogger(), events, &router.RouterGroup)
	return router
}

func do(t *testing.T, router http.Handler, method, path, body string) (int, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var decoded map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	}
	return rec.Code, decoded
}

func discardLogger() logger.Logger {
	cfg := logger.NewDefaultConfig()
	cfg.Output = "discard"
	return logger.NewLogrusLogger(cfg)
}

type stubEvents struct {
	addressed int
	err       error
	status    inbound.Status
	conns     []inbound.ConnectionInfo
	calls     []string
}

func (s *stubEvents) Broadcast(_ context.Context, message string) (int, error) {
	s.calls = append(s.calls, "broadcast:"+message)
	return s.addressed, s.err
}

func (s *stubEvents) SendEvent(_ context.Context, eventType, message string) (int, error) {
	s.calls = append(s.calls, eventType+":"+message)
	return s.addressed, s.err
}

func (s *stubEvents) Status(context.Context) inbound.Status {
	return s.status
}

func (s *stubEvents) Connections(_ context.Context, kind string) ([]inbound.ConnectionInfo, error) {
	s.calls = append(s.calls, "kind:"+kind)
	var filtered []inbound.ConnectionInfo
	for _, conn := range s.conns {
		if kind == "" || conn.Kind == kind {
			filtered = append(filtered, conn)
		}
	}
	return filtered, s.err
}
