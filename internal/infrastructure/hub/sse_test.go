package hub

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSSEConnection_Send(t *testing.T) {
	recorder := httptest.NewRecorder()
	conn := NewSSEConnection(context.Background(), "sse-1", recorder, time.Second, &mockLogger{})

	assert.Equal(t, "sse-1", conn.ID())
	assert.Equal(t, "sse", conn.Kind())
	assert.False(t, conn.IsClosed())

	require.NoError(t, conn.Send(context.Background(), WelcomeEvent("sse-1", time.Now())))

	assert.True(t, recorder.Flushed, "each event should be flushed")
	assert.Contains(t, recorder.Body.String(), "event: welcome\n")
	assert.Contains(t, recorder.Body.String(), `"clientId":"sse-1"`)
}

func TestSSEConnection_SendAfterClose(t *testing.T) {
	recorder := httptest.NewRecorder()
	conn := NewSSEConnection(context.Background(), "sse-1", recorder, 0, &mockLogger{})

	require.NoError(t, conn.Close())
	require.NoError(t, conn.Close(), "closing twice is a no-op")

	assert.True(t, conn.IsClosed())
	assert.Error(t, conn.Context().Err())

	err := conn.Send(context.Background(), HeartbeatEvent(time.Now()))
	assert.ErrorIs(t, err, ErrConnectionClosed)
	assert.Zero(t, recorder.Body.Len())
}

func TestSSEConnection_ClosedWithRequestContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	conn := NewSSEConnection(ctx, "sse-1", httptest.NewRecorder(), 0, &mockLogger{})

	cancel()

	assert.True(t, conn.IsClosed())
	select {
	case <-conn.Context().Done():
	case <-time.After(time.Second):
		t.Fatal("connection context was not cancelled")
	}
}

func TestSSEConnection_WriteFailureCloses(t *testing.T) {
	w := &brokenResponseWriter{header: http.Header{}, err: errors.New("connection reset")}
	conn := NewSSEConnection(context.Background(), "sse-1", w, time.Second, &mockLogger{})

	err := conn.Send(context.Background(), BroadcastEvent("hi", time.Now()))
	require.Error(t, err)
	assert.True(t, conn.IsClosed(), "a failed write should close the connection")

	assert.ErrorIs(t, conn.Send(context.Background(), BroadcastEvent("again", time.Now())), ErrConnectionClosed)
}

type brokenResponseWriter struct {
	header http.Header
	err    error
}

func (w *brokenResponseWriter) Header() http.Header       { return w.header }
func (w *brokenResponseWriter) WriteHeader(int)           {}
func (w *brokenResponseWriter) Write([]byte) (int, error) { return 0, w.err }
