package server

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	// Address is the listen address.
	// Default: ":8080".
	Address string

	// NavigateTimeout bounds a navigation started by a request. Zero means
	// the request context alone bounds it.
	NavigateTimeout time.Duration

	// Viewport, when set, is updated through PUT /api/viewport. Pass the
	// same value to navigation.WithViewport.
	Viewport *Viewport

	// DisableMetrics removes the /metrics endpoint.
	DisableMetrics bool

	// Gatherer serves /metrics.
	// Default: prometheus.DefaultGatherer.
	Gatherer prometheus.Gatherer

	// ReadHeaderTimeout is the http.Server header read timeout.
	// Default: 5 seconds.
	ReadHeaderTimeout time.Duration

	// IdleTimeout is the http.Server keep-alive timeout.
	// Default: 60 seconds.
	IdleTimeout time.Duration

	// ShutdownTimeout bounds graceful shutdown.
	// Default: 10 seconds.
	ShutdownTimeout time.Duration

	// Logger receives request and lifecycle logs.
	// Default: slog.Default().
	Logger *slog.Logger
}

// DefaultServerConfig returns a ServerConfig with sensible defaults.
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Address:           ":8080",
		Gatherer:          prometheus.DefaultGatherer,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
		ShutdownTimeout:   10 * time.Second,
		Logger:            slog.Default(),
	}
}

// withDefaults returns a copy of c with unset fields filled in.
func (c *ServerConfig) withDefaults() *ServerConfig {
	defaults := DefaultServerConfig()
	if c == nil {
		return defaults
	}
	out := *c
	if out.Address == "" {
		out.Address = defaults.Address
	}
	if out.Gatherer == nil {
		out.Gatherer = defaults.Gatherer
	}
	if out.ReadHeaderTimeout == 0 {
		out.ReadHeaderTimeout = defaults.ReadHeaderTimeout
	}
	if out.IdleTimeout == 0 {
		out.IdleTimeout = defaults.IdleTimeout
	}
	if out.ShutdownTimeout == 0 {
		out.ShutdownTimeout = defaults.ShutdownTimeout
	}
	if out.Logger == nil {
		out.Logger = defaults.Logger
	}
	return &out
}
