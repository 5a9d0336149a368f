package hub

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const instrumentationName = "go-sse-broadcast/hub"

// Metrics holds the hub metric instruments.
type Metrics struct {
	ActiveConnections metric.Int64UpDownCounter
	Broadcasts        metric.Int64Counter
	Deliveries        metric.Int64Counter
	FailedDeliveries  metric.Int64Counter
}

// NewMetrics creates all metric instruments on meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}
	var err error

	m.ActiveConnections, err = meter.Int64UpDownCounter("sse.connections.active",
		metric.WithDescription("Number of registered connections"))
	if err != nil {
		return nil, err
	}

	m.Broadcasts, err = meter.Int64Counter("sse.broadcasts",
		metric.WithDescription("Number of fan-out broadcasts"))
	if err != nil {
		return nil, err
	}

	m.Deliveries, err = meter.Int64Counter("sse.deliveries",
		metric.WithDescription("Number of events written to a connection"))
	if err != nil {
		return nil, err
	}

	m.FailedDeliveries, err = meter.Int64Counter("sse.deliveries.failed",
		metric.WithDescription("Number of failed writes, each followed by removal of the connection"))
	if err != nil {
		return nil, err
	}

	return m, nil
}

func newMetricsOrNoop(meter metric.Meter) (*Metrics, error) {
	if meter == nil {
		meter = otel.Meter(instrumentationName)
	}
	m, err := NewMetrics(meter)
	if err != nil {
		fallback, _ := NewMetrics(noop.NewMeterProvider().Meter(instrumentationName))
		return fallback, err
	}
	return m, nil
}

func (m *Metrics) connectionOpened(ctx context.Context, kind string) {
	m.ActiveConnections.Add(ctx, 1, metric.WithAttributes(attribute.String("connection.kind", kind)))
}

func (m *Metrics) connectionClosed(ctx context.Context, kind string) {
	m.ActiveConnections.Add(ctx, -1, metric.WithAttributes(attribute.String("connection.kind", kind)))
}

func (m *Metrics) delivered(ctx context.Context, eventType, kind string) {
	m.Deliveries.Add(ctx, 1, metric.WithAttributes(
		attribute.String("event.type", eventType),
		attribute.String("connection.kind", kind),
	))
}

func (m *Metrics) failed(ctx context.Context, eventType, kind string) {
	m.FailedDeliveries.Add(ctx, 1, metric.WithAttributes(
		attribute.String("event.type", eventType),
		attribute.String("connection.kind", kind),
	))
}

func (m *Metrics) broadcast(ctx context.Context, eventType string) {
	m.Broadcasts.Add(ctx, 1, metric.WithAttributes(attribute.String("event.type", eventType)))
}
