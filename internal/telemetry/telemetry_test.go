package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.False(t, cfg.Enabled)
	assert.Equal(t, "skiffd", cfg.ServiceName)
	assert.Equal(t, "dev", cfg.ServiceVersion)
	assert.Equal(t, "localhost:4317", cfg.Endpoint)
	assert.True(t, cfg.Insecure)
	assert.Equal(t, 1.0, cfg.SampleRate)
}

func TestInitDisabled(t *testing.T) {
	ctx := context.Background()
	cfg := DefaultConfig()
	cfg.Enabled = false

	shutdown, err := Init(ctx, cfg)
	require.NoError(t, err)
	require.NotNil(t, shutdown)

	// Should be able to call shutdown without error
	err = shutdown(ctx)
	assert.NoError(t, err)

	// Should not be enabled
	assert.False(t, IsEnabled())
}

func TestTracerReturnsNoOp(t *testing.T) {
	// Reset state
	tracer = nil
	enabled = false

	// Without initialization, should return no-op tracer
	tr := Tracer()
	require.NotNil(t, tr)
}

func TestStartSpan(t *testing.T) {
	ctx := context.Background()

	// Even without initialization, StartSpan should work (no-op)
	newCtx, span := StartSpan(ctx, "test.operation")
	require.NotNil(t, newCtx)
	require.NotNil(t, span)

	// Should be able to end the span
	span.End()
}

func TestSpanFromContext(t *testing.T) {
	ctx := context.Background()

	// Should return a span even without active span
	span := SpanFromContext(ctx)
	require.NotNil(t, span)
}

func TestAddEvent(t *testing.T) {
	ctx := context.Background()

	// Should not panic with no active span
	require.NotPanics(t, func() {
		AddEvent(ctx, "test.event")
	})
}

func TestRecordError(t *testing.T) {
	ctx := context.Background()

	// Should not panic with nil error
	require.NotPanics(t, func() {
		RecordError(ctx, nil)
	})

	// Should not panic with error
	require.NotPanics(t, func() {
		RecordError(ctx, errors.New("test error"))
	})
}

func TestSetStatus(t *testing.T) {
	ctx := context.Background()

	// Should not panic
	require.NotPanics(t, func() {
		SetStatus(ctx, codes.Ok, "success")
	})

	require.NotPanics(t, func() {
		SetStatus(ctx, codes.Error, "failed")
	})
}

func TestSetAttributes(t *testing.T) {
	ctx := context.Background()

	// Should not panic
	require.NotPanics(t, func() {
		SetAttributes(ctx, ClientIP("192.168.1.1"))
	})
}

func TestTraceID(t *testing.T) {
	ctx := context.Background()

	// Without active span, should return empty string
	traceID := TraceID(ctx)
	assert.Equal(t, "", traceID)
}

func TestSpanID(t *testing.T) {
	ctx := context.Background()

	// Without active span, should return empty string
	spanID := SpanID(ctx)
	assert.Equal(t, "", spanID)
}

func TestAttributeHelpers(t *testing.T) {
	t.Run("ClientIP", func(t *testing.T) {
		attr := ClientIP("192.168.1.100")
		assert.Equal(t, AttrClientIP, string(attr.Key))
		assert.Equal(t, "192.168.1.100", attr.Value.AsString())
	})

	t.Run("ClientAddr", func(t *testing.T) {
		attr := ClientAddr("192.168.1.100:12345")
		assert.Equal(t, AttrClientAddr, string(attr.Key))
		assert.Equal(t, "192.168.1.100:12345", attr.Value.AsString())
	})

	t.Run("SessionID", func(t *testing.T) {
		attr := SessionID("sess-1")
		assert.Equal(t, AttrSessionID, string(attr.Key))
		assert.Equal(t, "sess-1", attr.Value.AsString())
	})

	t.Run("Username", func(t *testing.T) {
		attr := Username("alice")
		assert.Equal(t, AttrUsername, string(attr.Key))
		assert.Equal(t, "alice", attr.Value.AsString())
	})

	t.Run("DeviceID", func(t *testing.T) {
		attr := DeviceID("laptop-1")
		assert.Equal(t, AttrDeviceID, string(attr.Key))
		assert.Equal(t, "laptop-1", attr.Value.AsString())
	})

	t.Run("FilePath", func(t *testing.T) {
		attr := FilePath("/docs/report.pdf")
		assert.Equal(t, AttrPath, string(attr.Key))
		assert.Equal(t, "/docs/report.pdf", attr.Value.AsString())
	})

	t.Run("RenameFrom", func(t *testing.T) {
		attr := RenameFrom("/docs/a.txt")
		assert.Equal(t, AttrFrom, string(attr.Key))
		assert.Equal(t, "/docs/a.txt", attr.Value.AsString())
	})

	t.Run("RenameTo", func(t *testing.T) {
		attr := RenameTo("/docs/b.txt")
		assert.Equal(t, AttrTo, string(attr.Key))
		assert.Equal(t, "/docs/b.txt", attr.Value.AsString())
	})

	t.Run("BackendStatus", func(t *testing.T) {
		attr := BackendStatus(404)
		assert.Equal(t, AttrBackendStatus, string(attr.Key))
		assert.Equal(t, int64(404), attr.Value.AsInt64())
	})

	t.Run("TaskID", func(t *testing.T) {
		attr := TaskID("task-1")
		assert.Equal(t, AttrTaskID, string(attr.Key))
		assert.Equal(t, "task-1", attr.Value.AsString())
	})

	t.Run("TaskKind", func(t *testing.T) {
		attr := TaskKind("search")
		assert.Equal(t, AttrTaskKind, string(attr.Key))
		assert.Equal(t, "search", attr.Value.AsString())
	})
}

func TestStartSessionSpan(t *testing.T) {
	ctx := context.Background()

	newCtx, span := StartSessionSpan(ctx, "list_dir", "sess-1", "alice")
	require.NotNil(t, newCtx)
	require.NotNil(t, span)
	span.End()

	// With additional attributes
	newCtx2, span2 := StartSessionSpan(ctx, "download", "sess-1", "alice", FilePath("/docs/a.txt"))
	require.NotNil(t, newCtx2)
	require.NotNil(t, span2)
	span2.End()
}

func TestStartBackendSpan(t *testing.T) {
	ctx := context.Background()

	newCtx, span := StartBackendSpan(ctx, "list", "/docs")
	require.NotNil(t, newCtx)
	require.NotNil(t, span)
	span.End()

	// With additional attributes
	newCtx2, span2 := StartBackendSpan(ctx, "rename", "/docs/a.txt", RenameTo("/docs/b.txt"))
	require.NotNil(t, newCtx2)
	require.NotNil(t, span2)
	span2.End()
}

func TestStartOffloadSpan(t *testing.T) {
	ctx := context.Background()

	newCtx, span := StartOffloadSpan(ctx, "dispatch", "task-1", TaskKind("search"))
	require.NotNil(t, newCtx)
	require.NotNil(t, span)
	span.End()
}

func TestInitProfilingDisabled(t *testing.T) {
	shutdown, err := InitProfiling(ProfilingConfig{Enabled: false})
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown())
	assert.False(t, IsProfilingEnabled())
}

func TestInitProfilingUnknownType(t *testing.T) {
	_, err := InitProfiling(ProfilingConfig{
		Enabled:      true,
		ServiceName:  "skiffd",
		Endpoint:     "http://localhost:4040",
		ProfileTypes: []string{"bogus"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown profile type")
}
