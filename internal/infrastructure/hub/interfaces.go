package hub

import (
	"context"
	"time"
)

// Connection represents one registered output stream (SSE, WebSocket).
//
// Send is only ever called from the hub run loop, so implementations do not
// need to serialize writes themselves. Context is cancelled when the
// connection is closed and doubles as the cancellation token for its
// heartbeat timer.
type Connection interface {
	ID() string
	Kind() string
	Send(ctx context.Context, event *Event) error
	Close() error
	IsClosed() bool
	Context() context.Context
}

// Sampler produces the payload of a generator event.
type Sampler interface {
	Sample(seq uint64, now time.Time) any
}

// SamplerFunc adapts a function to the Sampler interface.
type SamplerFunc func(seq uint64, now time.Time) any

func (f SamplerFunc) Sample(seq uint64, now time.Time) any {
	return f(seq, now)
}

// ConnectionInfo is a read-only view of a registered connection.
type ConnectionInfo struct {
	ID   string `json:"id"`
	Kind string `json:"kind"`
}
