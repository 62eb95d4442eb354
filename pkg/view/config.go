package view

import (
	"log/slog"

	"github.com/joestar-dev/joestar/pkg/metrics"
)

// Config configures a Runtime.
type Config struct {
	// Driver is the rendering platform. Required.
	Driver Driver

	// Logger is used by the runtime and every view and dispatcher.
	// Default: slog.Default()
	Logger *slog.Logger

	// Metrics records events, dispatch time and instructions.
	// Nil disables metrics.
	Metrics *metrics.Metrics

	// MaxEventQueue bounds the tasks Runtime.Post may leave pending.
	// Inbound events from a surface are always queued.
	// Default: 256
	MaxEventQueue int

	// Lang is the html lang attribute of view pages.
	// Default: "en"
	Lang string

	// Styles are inline stylesheets added to every view page.
	Styles []string
}

// DefaultConfig returns a Config with sensible defaults and no driver.
func DefaultConfig() Config {
	return Config{
		Logger:        slog.Default(),
		MaxEventQueue: 256,
		Lang:          "en",
	}
}

// Option configures a Runtime.
type Option func(*Config)

// WithDriver sets the rendering platform.
func WithDriver(d Driver) Option {
	return func(c *Config) {
		c.Driver = d
	}
}

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

// WithMaxEventQueue sets the host queue bound for posted tasks.
func WithMaxEventQueue(n int) Option {
	return func(c *Config) {
		c.MaxEventQueue = n
	}
}

// WithStyles adds inline stylesheets to every view page.
func WithStyles(styles ...string) Option {
	return func(c *Config) {
		c.Styles = append(c.Styles, styles...)
	}
}
