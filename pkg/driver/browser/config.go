package browser

import (
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/joestar-dev/joestar/pkg/metrics"
)

// Config configures the browser driver.
type Config struct {
	// Address is the TCP address to listen on.
	// Default: "127.0.0.1:8700"
	Address string

	// Logger is the structured logger.
	// Default: slog.Default()
	Logger *slog.Logger

	// Metrics records socket connections. Nil disables it.
	Metrics *metrics.Metrics

	// Gatherer backs the /metrics endpoint. Nil disables the endpoint.
	// Default: prometheus.DefaultGatherer
	Gatherer prometheus.Gatherer

	// ReadBufferSize and WriteBufferSize size the socket buffers.
	// Default: 4096
	ReadBufferSize  int
	WriteBufferSize int

	// CheckOrigin validates the socket request origin.
	// Default: SameOriginCheck
	CheckOrigin func(r *http.Request) bool

	// WriteTimeout bounds one socket write.
	// Default: 10s
	WriteTimeout time.Duration

	// HeartbeatInterval is the ping period. Peers that stop answering
	// are dropped after twice this interval.
	// Default: 30s
	HeartbeatInterval time.Duration

	// SendQueue is the per-connection outbound buffer, in instructions.
	// A connection whose buffer fills is dropped; the page it reloads
	// carries the current document.
	// Default: 256
	SendQueue int

	// ShutdownTimeout bounds the HTTP server shutdown on Terminate.
	// Default: 5s
	ShutdownTimeout time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Address:           "127.0.0.1:8700",
		Logger:            slog.Default(),
		Gatherer:          prometheus.DefaultGatherer,
		ReadBufferSize:    4096,
		WriteBufferSize:   4096,
		CheckOrigin:       SameOriginCheck,
		WriteTimeout:      10 * time.Second,
		HeartbeatInterval: 30 * time.Second,
		SendQueue:         256,
		ShutdownTimeout:   5 * time.Second,
	}
}

// SameOriginCheck accepts socket requests without an Origin header or whose
// Origin host matches the request host.
func SameOriginCheck(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	originURL, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return r.Host != "" && originURL.Host == r.Host
}

// withDefaults fills zero fields from DefaultConfig.
func (c *Config) withDefaults() *Config {
	d := DefaultConfig()
	if c == nil {
		return d
	}
	out := *c
	if out.Address == "" {
		out.Address = d.Address
	}
	if out.Logger == nil {
		out.Logger = d.Logger
	}
	if out.ReadBufferSize <= 0 {
		out.ReadBufferSize = d.ReadBufferSize
	}
	if out.WriteBufferSize <= 0 {
		out.WriteBufferSize = d.WriteBufferSize
	}
	if out.CheckOrigin == nil {
		out.CheckOrigin = d.CheckOrigin
	}
	if out.WriteTimeout <= 0 {
		out.WriteTimeout = d.WriteTimeout
	}
	if out.HeartbeatInterval <= 0 {
		out.HeartbeatInterval = d.HeartbeatInterval
	}
	if out.SendQueue <= 0 {
		out.SendQueue = d.SendQueue
	}
	if out.ShutdownTimeout <= 0 {
		out.ShutdownTimeout = d.ShutdownTimeout
	}
	return &out
}
