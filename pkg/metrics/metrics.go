// Package metrics exposes Prometheus metrics for the bridge.
//
// Metrics collected:
//   - joestar_events_total: inbound events by kind and outcome
//   - joestar_dispatch_duration_seconds: callback invocation time by kind
//   - joestar_instructions_total: outbound instructions by op
//   - joestar_active_views: open views
//   - joestar_surface_connections: connected socket clients
//
// All Record methods are safe on a nil *Metrics, which records nothing.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Config configures the Prometheus metrics.
type Config struct {
	// Namespace is the metrics namespace (default: "joestar").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for dispatch duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// Option configures the metrics.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) Option {
	return func(c *Config) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) Option {
	return func(c *Config) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

func defaultConfig() Config {
	return Config{
		Namespace: "joestar",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics holds the bridge's Prometheus collectors.
type Metrics struct {
	eventsTotal      *prometheus.CounterVec
	dispatchDuration *prometheus.HistogramVec
	instructions     *prometheus.CounterVec
	activeViews      prometheus.Gauge
	connections      prometheus.Gauge
}

// New registers a new set of collectors.
func New(opts ...Option) *Metrics {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		eventsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "events_total",
			Help:        "Total number of inbound UI events by outcome",
			ConstLabels: config.ConstLabels,
		}, []string{"kind", "outcome"}),

		dispatchDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "dispatch_duration_seconds",
			Help:        "Host callback invocation duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"kind"}),

		instructions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "instructions_total",
			Help:        "Total number of instructions sent to rendering surfaces",
			ConstLabels: config.ConstLabels,
		}, []string{"op"}),

		activeViews: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "active_views",
			Help:        "Number of open views",
			ConstLabels: config.ConstLabels,
		}),

		connections: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "surface_connections",
			Help:        "Number of connected socket surfaces",
			ConstLabels: config.ConstLabels,
		}),
	}
}

var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// Default returns the process-wide metrics registered with
// prometheus.DefaultRegisterer, creating them on first use.
func Default() *Metrics {
	defaultMetricsOnce.Do(func() {
		defaultMetrics = New()
	})
	return defaultMetrics
}

// RecordEvent records one inbound event and its outcome.
func (m *Metrics) RecordEvent(kind, outcome string) {
	if m == nil {
		return
	}
	m.eventsTotal.WithLabelValues(kind, outcome).Inc()
}

// RecordDispatch records the time a callback took.
func (m *Metrics) RecordDispatch(kind string, d time.Duration) {
	if m == nil {
		return
	}
	m.dispatchDuration.WithLabelValues(kind).Observe(d.Seconds())
}

// RecordInstruction records an instruction sent to a surface.
func (m *Metrics) RecordInstruction(op string) {
	if m == nil {
		return
	}
	m.instructions.WithLabelValues(op).Inc()
}

// ViewOpened records a new view.
func (m *Metrics) ViewOpened() {
	if m == nil {
		return
	}
	m.activeViews.Inc()
}

// ViewClosed records a destroyed view.
func (m *Metrics) ViewClosed() {
	if m == nil {
		return
	}
	m.activeViews.Dec()
}

// Connected records a socket surface connecting.
func (m *Metrics) Connected() {
	if m == nil {
		return
	}
	m.connections.Inc()
}

// Disconnected records a socket surface disconnecting.
func (m *Metrics) Disconnected() {
	if m == nil {
		return
	}
	m.connections.Dec()
}
