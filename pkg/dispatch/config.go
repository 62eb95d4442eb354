package dispatch

import (
	"log/slog"

	"go.opentelemetry.io/otel/trace"

	"github.com/joestar-dev/joestar/pkg/metrics"
)

// Config configures a Dispatcher.
type Config struct {
	// Logger receives malformed-message warnings and panic reports.
	// Default: slog.Default()
	Logger *slog.Logger

	// Metrics records event outcomes and dispatch duration.
	// Nil disables metrics.
	Metrics *metrics.Metrics

	// TracerName names the tracer resolved from the global provider
	// (default: "joestar").
	TracerName string

	// Tracer overrides the global tracer.
	Tracer trace.Tracer
}

// DefaultConfig returns the default dispatcher configuration.
func DefaultConfig() Config {
	return Config{
		Logger:     slog.Default(),
		TracerName: "joestar",
	}
}

// Option configures a Dispatcher.
type Option func(*Config)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Config) {
		c.Metrics = m
	}
}

// WithTracerName sets the tracer name.
func WithTracerName(name string) Option {
	return func(c *Config) {
		c.TracerName = name
	}
}

// WithTracer sets the tracer directly.
func WithTracer(tracer trace.Tracer) Option {
	return func(c *Config) {
		c.Tracer = tracer
	}
}
