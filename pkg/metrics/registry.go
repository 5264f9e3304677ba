// Package metrics provides the global Prometheus registry and interface
// definitions for skiffd observability.
//
// Metrics collection is opt-in. Call InitRegistry once at startup, before
// constructing any component that records metrics; constructors in
// pkg/metrics/prometheus return nil when the registry was never initialized,
// which disables collection with zero overhead.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	mu       sync.RWMutex
	registry *prometheus.Registry
)

// InitRegistry creates the global metrics registry with the standard Go
// runtime and process collectors.
//
// Must be called before any New*Metrics constructor; constructors called
// earlier return nil and record nothing. Calling InitRegistry again replaces
// the registry, which detaches previously created instruments.
//
// Example usage:
//
//	metrics.InitRegistry()
//	serverMetrics := prometheus.NewServerMetrics()
//	st := state.New(maxTransfers, serverMetrics)
func InitRegistry() {
	mu.Lock()
	defer mu.Unlock()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	registry = reg
}

// IsEnabled reports whether InitRegistry has been called.
func IsEnabled() bool {
	mu.RLock()
	defer mu.RUnlock()
	return registry != nil
}

// GetRegistry returns the global registry, or nil when metrics are disabled.
func GetRegistry() *prometheus.Registry {
	mu.RLock()
	defer mu.RUnlock()
	return registry
}

// Handler returns an http.Handler serving the registry in the Prometheus
// exposition format. Returns http.NotFoundHandler when metrics are disabled
// so the route can be mounted unconditionally.
func Handler() http.Handler {
	reg := GetRegistry()
	if reg == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
