package hub

import (
	"time"

	"go.opentelemetry.io/otel/metric"
)

const (
	DefaultHeartbeatInterval = 30 * time.Second
	DefaultGeneratorInterval = 5 * time.Second

	cleanupInterval = 30 * time.Second
)

// Option configures a Hub
type Option func(*Hub)

// WithHeartbeatInterval sets the per-connection keep-alive interval.
// Non-positive values are ignored.
func WithHeartbeatInterval(d time.Duration) Option {
	return func(h *Hub) {
		if d > 0 {
			h.heartbeatInterval = d
		}
	}
}

// WithGeneratorInterval sets the interval of the periodic generator.
// Zero disables the generator.
func WithGeneratorInterval(d time.Duration) Option {
	return func(h *Hub) {
		if d >= 0 {
			h.generatorInterval = d
		}
	}
}

// WithSampler replaces the generator payload source
func WithSampler(s Sampler) Option {
	return func(h *Hub) {
		if s != nil {
			h.sampler = s
		}
	}
}

// WithMeter records hub metrics on meter instead of the global provider
func WithMeter(meter metric.Meter) Option {
	return func(h *Hub) {
		h.meter = meter
	}
}

// WithClock overrides the time source used for event timestamps
func WithClock(now func() time.Time) Option {
	return func(h *Hub) {
		if now != nil {
			h.now = now
		}
	}
}
