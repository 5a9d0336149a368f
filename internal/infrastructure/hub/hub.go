package hub

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"go-sse-broadcast/internal/infrastructure/logger"
)

// Hub owns the connection registry and every write to every connection.
//
// All registry access happens on a single run loop goroutine; the public
// methods hand requests to that loop over channels and wait for the reply.
type Hub struct {
	registry *Registry
	seq      uint64

	heartbeatInterval time.Duration
	generatorInterval time.Duration
	sampler           Sampler
	now               func() time.Time

	meter   metric.Meter
	metrics *Metrics
	tracer  trace.Tracer

	running   bool
	runningMu sync.RWMutex

	logger logger.Logger

	// Channels for internal communication
	register   chan *registration
	unregister chan *unregistration
	broadcast  chan *broadcastRequest
	heartbeat  chan string
	inspect    chan func(*Registry)

	// Context and completion signal of the current run loop
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

type registration struct {
	conn  Connection
	reply chan error
}

type unregistration struct {
	id    string
	reply chan struct{}
}

type broadcastRequest struct {
	ctx   context.Context
	event *Event
	reply chan int
}

// New creates a new Hub instance
func New(log logger.Logger, opts ...Option) *Hub {
	h := &Hub{
		registry:          NewRegistry(),
		heartbeatInterval: DefaultHeartbeatInterval,
		generatorInterval: DefaultGeneratorInterval,
		sampler:           NewStockSampler(DefaultSymbol),
		now:               time.Now,
		tracer:            otel.Tracer(instrumentationName),
		logger:            log.WithField("component", "hub"),
		register:          make(chan *registration),
		unregister:        make(chan *unregistration),
		broadcast:         make(chan *broadcastRequest),
		heartbeat:         make(chan string),
		inspect:           make(chan func(*Registry)),
	}

	for _, opt := range opts {
		opt(h)
	}

	metrics, err := newMetricsOrNoop(h.meter)
	if err != nil {
		h.logger.Warnf("failed to create hub metrics, recording disabled: %v", err)
	}
	h.metrics = metrics

	return h
}

// Start starts the hub and begins processing connection events
func (h *Hub) Start(ctx context.Context) error {
	h.runningMu.Lock()
	defer h.runningMu.Unlock()

	if h.running {
		return ErrHubAlreadyRunning
	}

	h.ctx, h.cancel = context.WithCancel(ctx)
	h.done = make(chan struct{})
	h.running = true

	go h.run(h.ctx, h.done)

	h.logger.Infof(
		"Hub started (heartbeat: %s, generator: %s)",
		h.heartbeatInterval,
		h.generatorInterval,
	)
	return nil
}

// Stop stops the run loop, closes and unregisters every connection and
// waits for the loop to exit or ctx to expire.
func (h *Hub) Stop(ctx context.Context) error {
	h.runningMu.Lock()
	defer h.runningMu.Unlock()

	if !h.running {
		return nil
	}

	h.cancel()

	select {
	case <-h.done:
	case <-ctx.Done():
		return fmt.Errorf("waiting for hub run loop: %w", ctx.Err())
	}

	h.running = false
	h.logger.Info("Hub stopped successfully")
	return nil
}

// IsRunning returns true if the hub is currently running
func (h *Hub) IsRunning() bool {
	h.runningMu.RLock()
	defer h.runningMu.RUnlock()
	return h.running
}

// loopDone returns the completion channel of the current run loop.
func (h *Hub) loopDone() (<-chan struct{}, error) {
	h.runningMu.RLock()
	defer h.runningMu.RUnlock()

	if !h.running {
		return nil, ErrHubNotRunning
	}
	return h.done, nil
}

// RegisterConnection adds a new connection to the hub. The welcome event has
// been written to the connection when it returns nil.
func (h *Hub) RegisterConnection(conn Connection) error {
	done, err := h.loopDone()
	if err != nil {
		return err
	}

	req := &registration{conn: conn, reply: make(chan error, 1)}
	select {
	case h.register <- req:
	case <-done:
		return ErrHubNotRunning
	}

	select {
	case err := <-req.reply:
		return err
	case <-done:
		return ErrHubNotRunning
	}
}

// UnregisterConnection removes a connection from the hub. When it returns
// the hub will not write to the connection again. Unknown ids are ignored.
func (h *Hub) UnregisterConnection(connID string) error {
	done, err := h.loopDone()
	if err != nil {
		return err
	}

	req := &unregistration{id: connID, reply: make(chan struct{})}
	select {
	case h.unregister <- req:
	case <-done:
		return ErrHubNotRunning
	}

	select {
	case <-req.reply:
		return nil
	case <-done:
		return ErrHubNotRunning
	}
}

// Broadcast sends an event to all connections and returns the number of
// connections registered when the broadcast started. Connections whose
// write fails are unregistered.
func (h *Hub) Broadcast(ctx context.Context, event *Event) (int, error) {
	done, err := h.loopDone()
	if err != nil {
		return 0, err
	}

	req := &broadcastRequest{ctx: ctx, event: event, reply: make(chan int, 1)}
	select {
	case h.broadcast <- req:
	case <-ctx.Done():
		return 0, ctx.Err()
	case <-done:
		return 0, ErrHubNotRunning
	}

	select {
	case addressed := <-req.reply:
		return addressed, nil
	case <-ctx.Done():
		return 0, ctx.Err()
	case <-done:
		return 0, ErrHubNotRunning
	}
}

// ConnectionCount returns the number of active connections
func (h *Hub) ConnectionCount() int {
	var count int
	if err := h.inspectRegistry(func(r *Registry) {
		count = r.Size()
	}); err != nil {
		return 0
	}
	return count
}

// Connections returns the registered connections, optionally filtered by
// kind. An empty kind matches every connection.
func (h *Hub) Connections(kind string) ([]ConnectionInfo, error) {
	var infos []ConnectionInfo
	err := h.inspectRegistry(func(r *Registry) {
		infos = make([]ConnectionInfo, 0, r.Size())
		for _, conn := range r.Connections() {
			if kind != "" && conn.Kind() != kind {
				continue
			}
			infos = append(infos, ConnectionInfo{ID: conn.ID(), Kind: conn.Kind()})
		}
	})
	if err != nil {
		return nil, err
	}
	return infos, nil
}

func (h *Hub) inspectRegistry(fn func(*Registry)) error {
	done, err := h.loopDone()
	if err != nil {
		return err
	}

	finished := make(chan struct{})
	select {
	case h.inspect <- func(r *Registry) {
		fn(r)
		close(finished)
	}:
	case <-done:
		return ErrHubNotRunning
	}

	select {
	case <-finished:
		return nil
	case <-done:
		return ErrHubNotRunning
	}
}

// run is the main hub loop that processes connection events
func (h *Hub) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	cleanup := time.NewTicker(cleanupInterval)
	defer cleanup.Stop()

	var generate <-chan time.Time
	if h.generatorInterval > 0 {
		ticker := time.NewTicker(h.generatorInterval)
		defer ticker.Stop()
		generate = ticker.C
	}

	for {
		select {
		case req := <-h.register:
			req.reply <- h.handleRegister(ctx, req.conn, done)

		case req := <-h.unregister:
			h.removeConnection(ctx, req.id, "unregistered")
			close(req.reply)

		case req := <-h.broadcast:
			// A caller that gives up must not fail writes for everyone else.
			req.reply <- h.handleBroadcast(context.WithoutCancel(req.ctx), req.event)

		case connID := <-h.heartbeat:
			h.handleHeartbeat(ctx, connID)

		case fn := <-h.inspect:
			fn(h.registry)

		case <-generate:
			h.handleGenerate(ctx)

		case <-cleanup.C:
			h.cleanupClosedConnections(ctx)

		case <-ctx.Done():
			h.closeAll()
			h.logger.Info("Hub run loop stopped")
			return
		}
	}
}

// handleRegister processes connection registration
func (h *Hub) handleRegister(ctx context.Context, conn Connection, done <-chan struct{}) error {
	if err := h.registry.Register(conn); err != nil {
		h.logger.Warnf("Rejected registration: %v", err)
		return err
	}
	h.metrics.connectionOpened(ctx, conn.Kind())

	h.logger.Infof(
		"Connection %s registered (type: %s). Total connections: %d",
		conn.ID(),
		conn.Kind(),
		h.registry.Size(),
	)

	if err := conn.Send(ctx, WelcomeEvent(conn.ID(), h.now())); err != nil {
		h.metrics.failed(ctx, string(EventTypeWelcome), conn.Kind())
		h.removeConnection(ctx, conn.ID(), "welcome failed")
		return fmt.Errorf("send welcome to %s: %w", conn.ID(), err)
	}
	h.metrics.delivered(ctx, string(EventTypeWelcome), conn.Kind())

	go h.runHeartbeat(conn, done)
	return nil
}

// removeConnection unregisters and closes a connection; absent ids are ignored
func (h *Hub) removeConnection(ctx context.Context, connID, reason string) {
	conn, exists := h.registry.Unregister(connID)
	if !exists {
		return
	}

	if err := conn.Close(); err != nil {
		h.logger.Errorf("Failed to close connection %s: %v", connID, err)
	}
	h.metrics.connectionClosed(ctx, conn.Kind())

	h.logger.Infof(
		"Connection %s removed (%s). Total connections: %d",
		connID,
		reason,
		h.registry.Size(),
	)
}

// handleBroadcast writes event to every registered connection
func (h *Hub) handleBroadcast(ctx context.Context, event *Event) int {
	ctx, span := h.tracer.Start(ctx, "hub.broadcast",
		trace.WithAttributes(attribute.String("event.type", event.Type)),
	)
	defer span.End()

	addressed := h.registry.Size()
	delivered := 0

	h.registry.ForEach(func(id string, conn Connection) {
		if err := conn.Send(ctx, event); err != nil {
			h.logger.Errorf("Failed to send %s event to connection %s: %v", event.Type, id, err)
			h.metrics.failed(ctx, event.Type, conn.Kind())
			h.removeConnection(ctx, id, "write failed")
			return
		}
		h.metrics.delivered(ctx, event.Type, conn.Kind())
		delivered++
	})

	h.metrics.broadcast(ctx, event.Type)
	span.SetAttributes(
		attribute.Int("broadcast.addressed", addressed),
		attribute.Int("broadcast.delivered", delivered),
	)

	h.logger.Debugf(
		"Broadcasted %s event to %d/%d connections",
		event.Type,
		delivered,
		addressed,
	)
	return addressed
}

// handleHeartbeat writes a keep-alive event to a single connection if it is
// still registered
func (h *Hub) handleHeartbeat(ctx context.Context, connID string) {
	conn, exists := h.registry.Get(connID)
	if !exists {
		return
	}

	if err := conn.Send(ctx, HeartbeatEvent(h.now())); err != nil {
		h.logger.Errorf("Failed to send heartbeat to connection %s: %v", connID, err)
		h.metrics.failed(ctx, string(EventTypeHeartbeat), conn.Kind())
		h.removeConnection(ctx, connID, "heartbeat failed")
		return
	}
	h.metrics.delivered(ctx, string(EventTypeHeartbeat), conn.Kind())
}

// handleGenerate broadcasts the next generator event when anyone listens
func (h *Hub) handleGenerate(ctx context.Context) {
	if h.registry.Size() == 0 {
		return
	}

	h.seq++
	now := h.now()
	event := NewEventBuilder().
		WithType(EventTypeStockUpdate).
		WithSeq(h.seq).
		WithData(h.sampler.Sample(h.seq, now)).
		WithTimestamp(now).
		Build()

	h.handleBroadcast(ctx, event)
}

// runHeartbeat asks the run loop for a keep-alive write on every tick until
// the connection's context is cancelled or the loop exits
func (h *Hub) runHeartbeat(conn Connection, done <-chan struct{}) {
	ticker := time.NewTicker(h.heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			select {
			case h.heartbeat <- conn.ID():
			case <-conn.Context().Done():
				return
			case <-done:
				return
			}

		case <-conn.Context().Done():
			return

		case <-done:
			return
		}
	}
}

// cleanupClosedConnections removes connections that have been closed
// without an unregister request
func (h *Hub) cleanupClosedConnections(ctx context.Context) {
	h.registry.ForEach(func(id string, conn Connection) {
		if conn.IsClosed() {
			h.removeConnection(ctx, id, "closed")
		}
	})
}

func (h *Hub) closeAll() {
	// The run context is already cancelled; metrics still need a live one.
	ctx := context.Background()
	h.registry.ForEach(func(id string, _ Connection) {
		h.removeConnection(ctx, id, "hub stopped")
	})
}
