package hub

import (
	"fmt"
	"strings"
	"time"
)

// EventType defines the event types emitted by the hub itself
type EventType string

const (
	EventTypeWelcome     EventType = "welcome"
	EventTypeHeartbeat   EventType = "heartbeat"
	EventTypeBroadcast   EventType = "broadcast"
	EventTypeStockUpdate EventType = "stock-update"
)

// TimestampLayout is the ISO-8601 layout used in event payloads.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

const (
	welcomeText = "Connected to SSE server"
	senderName  = "server"
)

// Event is one unit of server-to-listener data. Seq is zero for events that
// do not carry a sequence identifier.
type Event struct {
	Type      string    `json:"type"`
	Seq       uint64    `json:"id,omitempty"`
	Data      any       `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}

// HasSeq reports whether the event carries a sequence identifier.
func (e *Event) HasSeq() bool {
	return e.Seq > 0
}

// WelcomePayload is sent once to every new connection.
type WelcomePayload struct {
	Type     string `json:"type"`
	Message  string `json:"message"`
	ClientID string `json:"clientId"`
}

// HeartbeatPayload carries the emission time in unix milliseconds.
type HeartbeatPayload struct {
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"`
}

// MessagePayload is the payload of broadcast and caller-typed events.
type MessagePayload struct {
	Type      string `json:"type"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
	Sender    string `json:"sender,omitempty"`
}

// EventBuilder helps build events with fluent interface
type EventBuilder struct {
	event Event
}

// NewEventBuilder creates a new event builder
func NewEventBuilder() *EventBuilder {
	return &EventBuilder{}
}

// WithType sets the event type
func (eb *EventBuilder) WithType(eventType EventType) *EventBuilder {
	eb.event.Type = string(eventType)
	return eb
}

// WithSeq sets the sequence identifier
func (eb *EventBuilder) WithSeq(seq uint64) *EventBuilder {
	eb.event.Seq = seq
	return eb
}

// WithData sets the event payload
func (eb *EventBuilder) WithData(data any) *EventBuilder {
	eb.event.Data = data
	return eb
}

// WithTimestamp sets the creation time
func (eb *EventBuilder) WithTimestamp(t time.Time) *EventBuilder {
	eb.event.Timestamp = t
	return eb
}

// Build returns a copy of the constructed event. The builder can be reused.
func (eb *EventBuilder) Build() *Event {
	event := eb.event
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	return &event
}

// WelcomeEvent creates the first event written to a new connection
func WelcomeEvent(connID string, now time.Time) *Event {
	return NewEventBuilder().
		WithType(EventTypeWelcome).
		WithData(WelcomePayload{
			Type:     string(EventTypeWelcome),
			Message:  welcomeText,
			ClientID: connID,
		}).
		WithTimestamp(now).
		Build()
}

// HeartbeatEvent creates a keep-alive event
func HeartbeatEvent(now time.Time) *Event {
	return NewEventBuilder().
		WithType(EventTypeHeartbeat).
		WithData(HeartbeatPayload{
			Type:      string(EventTypeHeartbeat),
			Timestamp: now.UnixMilli(),
		}).
		WithTimestamp(now).
		Build()
}

// BroadcastEvent creates a broadcast event carrying a text message
func BroadcastEvent(message string, now time.Time) *Event {
	return NewEventBuilder().
		WithType(EventTypeBroadcast).
		WithData(MessagePayload{
			Type:      string(EventTypeBroadcast),
			Message:   message,
			Timestamp: FormatTimestamp(now),
			Sender:    senderName,
		}).
		WithTimestamp(now).
		Build()
}

// TypedEvent creates an event of a caller-given type. The type must pass
// ValidateEventType.
func TypedEvent(eventType, message string, now time.Time) *Event {
	return NewEventBuilder().
		WithType(EventType(eventType)).
		WithData(MessagePayload{
			Type:      eventType,
			Message:   message,
			Timestamp: FormatTimestamp(now),
		}).
		WithTimestamp(now).
		Build()
}

// ValidateEventType checks that an event type can be written on a single
// "event:" line.
func ValidateEventType(eventType string) error {
	if strings.TrimSpace(eventType) == "" {
		return fmt.Errorf("event type cannot be empty")
	}
	if strings.ContainsAny(eventType, "\r\n") {
		return fmt.Errorf("event type %q contains a line break", eventType)
	}
	return nil
}

// FormatTimestamp renders t as UTC ISO-8601 with millisecond precision.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}
