package api

import (
	"fmt"
	"time"
)

// Config holds HTTP server configuration. The same listener carries the REST
// API and the WebSocket endpoint.
type Config struct {
	// ListenAddr is the bind address (default: 0.0.0.0)
	ListenAddr string

	// Port is the TCP port to listen on (default: 9280)
	Port int

	// ReadTimeout is the maximum duration for reading a request (default: 10s)
	ReadTimeout time.Duration

	// WriteTimeout is the maximum duration for writing a response (default: 10s)
	WriteTimeout time.Duration

	// IdleTimeout is the maximum time to wait for the next request on a
	// keep-alive connection (default: 60s)
	IdleTimeout time.Duration
}

// Addr returns the listen address in host:port form.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.ListenAddr, c.Port)
}

// applyDefaults fills in zero values with sensible defaults.
func (c *Config) applyDefaults() {
	if c.ListenAddr == "" {
		c.ListenAddr = "0.0.0.0"
	}
	if c.Port == 0 {
		c.Port = 9280
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 10 * time.Second
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 10 * time.Second
	}
	if c.IdleTimeout == 0 {
		c.IdleTimeout = 60 * time.Second
	}
}
