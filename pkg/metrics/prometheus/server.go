// Package prometheus contains the Prometheus-backed implementations of the
// skiffd metrics interfaces.
package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/skiffworks/skiff/pkg/metrics"
)

// serverMetrics is the Prometheus implementation for coordination-state
// metrics: session count, transfer admissions, and broadcast drops.
type serverMetrics struct {
	activeSessions   prometheus.Gauge
	activeTransfers  prometheus.Gauge
	broadcastDropped prometheus.Counter
	backendOps       *prometheus.HistogramVec
}

// NewServerMetrics creates a new Prometheus-backed server metrics instance.
//
// Returns nil if metrics are not enabled (InitRegistry not called). All
// methods are safe to call on a nil receiver, so callers can pass the result
// through unconditionally.
func NewServerMetrics() *serverMetrics {
	if !metrics.IsEnabled() {
		return nil
	}

	reg := metrics.GetRegistry()

	return &serverMetrics{
		activeSessions: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "skiff_active_sessions",
				Help: "Number of currently registered WebSocket sessions",
			},
		),
		activeTransfers: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "skiff_active_transfers",
				Help: "Number of in-flight upload/download transfers",
			},
		),
		broadcastDropped: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "skiff_broadcast_dropped_total",
				Help: "Total number of broadcast messages dropped on full session queues",
			},
		),
		backendOps: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "skiff_backend_op_duration_seconds",
				Help:    "Latency of Filebrowser backend calls by operation and outcome",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"op", "status"}, // status: "ok" or "error"
		),
	}
}

// SetActiveSessions records the current number of registered sessions.
func (m *serverMetrics) SetActiveSessions(n int) {
	if m == nil {
		return
	}
	m.activeSessions.Set(float64(n))
}

// SetActiveTransfers records the current number of in-flight transfers.
func (m *serverMetrics) SetActiveTransfers(n int) {
	if m == nil {
		return
	}
	m.activeTransfers.Set(float64(n))
}

// IncBroadcastDropped counts a broadcast dropped on a full session queue.
func (m *serverMetrics) IncBroadcastDropped() {
	if m == nil {
		return
	}
	m.broadcastDropped.Inc()
}

// ObserveBackendOp records a backend call's duration and outcome.
func (m *serverMetrics) ObserveBackendOp(op string, seconds float64, success bool) {
	if m == nil {
		return
	}
	status := "ok"
	if !success {
		status = "error"
	}
	m.backendOps.WithLabelValues(op, status).Observe(seconds)
}
