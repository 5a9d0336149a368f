package facade

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go-sse-broadcast/internal/infrastructure/hub"
	"go-sse-broadcast/internal/infrastructure/logger"
	"go-sse-broadcast/internal/port/inbound"
)

var (
	ErrMissingMessage   = errors.New("message is required")
	ErrMissingEventType = errors.New("event type is required")
	ErrInvalidEventType = errors.New("invalid event type")
)

type EventApplicationService struct {
	hub       *hub.Hub
	logger    logger.Logger
	startedAt time.Time
	now       func() time.Time
}

var _ inbound.EventUseCase = (*EventApplicationService)(nil)

// NewEventApplicationService creates the service; startedAt is the process
// start time reported as uptime by Status.
func NewEventApplicationService(
	hubInstance *hub.Hub,
	log logger.Logger,
	startedAt time.Time,
) *EventApplicationService {
	return &EventApplicationService{
		hub:       hubInstance,
		logger:    log.WithField("service", "events"),
		startedAt: startedAt,
		now:       time.Now,
	}
}

func (s *EventApplicationService) Broadcast(ctx context.Context, message string) (int, error) {
	if strings.TrimSpace(message) == "" {
		return 0, ErrMissingMessage
	}

	addressed, err := s.hub.Broadcast(ctx, hub.BroadcastEvent(message, s.now()))
	if err != nil {
		return 0, fmt.Errorf("broadcast: %w", err)
	}

	s.logger.Infof("Broadcasted message to %d clients", addressed)
	return addressed, nil
}

func (s *EventApplicationService) SendEvent(ctx context.Context, eventType, message string) (int, error) {
	if strings.TrimSpace(eventType) == "" {
		return 0, ErrMissingEventType
	}
	if err := hub.ValidateEventType(eventType); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidEventType, err)
	}
	if strings.TrimSpace(message) == "" {
		return 0, ErrMissingMessage
	}

	addressed, err := s.hub.Broadcast(ctx, hub.TypedEvent(eventType, message, s.now()))
	if err != nil {
		return 0, fmt.Errorf("send %s event: %w", eventType, err)
	}

	s.logger.Infof("Sent %s event to %d clients", eventType, addressed)
	return addressed, nil
}

func (s *EventApplicationService) Status(_ context.Context) inbound.Status {
	now := s.now()
	return inbound.Status{
		ConnectedClients: s.hub.ConnectionCount(),
		Uptime:           now.Sub(s.startedAt),
		Timestamp:        now,
		HubRunning:       s.hub.IsRunning(),
	}
}

func (s *EventApplicationService) Connections(_ context.Context, kind string) ([]inbound.ConnectionInfo, error) {
	conns, err := s.hub.Connections(kind)
	if err != nil {
		return nil, fmt.Errorf("list connections: %w", err)
	}

	infos := make([]inbound.ConnectionInfo, len(conns))
	for i, conn := range conns {
		infos[i] = inbound.ConnectionInfo{ID: conn.ID, Kind: conn.Kind}
	}
	return infos, nil
}
