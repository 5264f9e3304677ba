package prometheus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skiffworks/skiff/pkg/metrics"
)

func TestServerMetricsNilReceiver(t *testing.T) {
	var m *serverMetrics

	require.NotPanics(t, func() {
		m.SetActiveSessions(3)
		m.SetActiveTransfers(1)
		m.IncBroadcastDropped()
		m.ObserveBackendOp("list", 0.01, true)
	})
}

func TestServerMetricsRegistered(t *testing.T) {
	// InitRegistry creates a fresh registry, so this test does not collide
	// with instruments registered by earlier tests.
	metrics.InitRegistry()

	m := NewServerMetrics()
	require.NotNil(t, m)

	m.SetActiveSessions(2)
	m.SetActiveTransfers(1)
	m.IncBroadcastDropped()
	m.ObserveBackendOp("upload", 0.25, true)
	m.ObserveBackendOp("upload", 1.5, false)

	families, err := metrics.GetRegistry().Gather()
	require.NoError(t, err)

	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}

	assert.True(t, names["skiff_active_sessions"])
	assert.True(t, names["skiff_active_transfers"])
	assert.True(t, names["skiff_broadcast_dropped_total"])
	assert.True(t, names["skiff_backend_op_duration_seconds"])
}
