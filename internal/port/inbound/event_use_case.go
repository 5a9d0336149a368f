package inbound

import (
	"context"
	"time"
)

// EventUseCase is the control surface of the event stream: it publishes
// events to every listener and reports on the listeners.
type EventUseCase interface {
	// Broadcast sends a broadcast event carrying message and returns the
	// number of listeners addressed.
	Broadcast(ctx context.Context, message string) (int, error)
	// SendEvent sends an event of the given type carrying message and returns
	// the number of listeners addressed.
	SendEvent(ctx context.Context, eventType, message string) (int, error)
	Status(ctx context.Context) Status
	Connections(ctx context.Context, kind string) ([]ConnectionInfo, error)
}

type Status struct {
	ConnectedClients int
	Uptime           time.Duration
	Timestamp        time.Time
	HubRunning       bool
}

type ConnectionInfo struct {
	ID   string
	Kind string
}
