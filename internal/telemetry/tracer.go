package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys for skiffd spans. Session keys mirror the logger field
// names so traces and structured logs correlate.
const (
	// Session attributes
	AttrSessionID = "session.id"
	AttrUsername  = "user.name"
	AttrDeviceID  = "device.id"

	// Connection attributes
	AttrClientIP   = "client.ip"
	AttrClientAddr = "client.addr"

	// WebSocket operation attributes
	AttrOp   = "ws.op"
	AttrPath = "fs.path"
	AttrFrom = "fs.from"
	AttrTo   = "fs.to"

	// Backend gateway attributes
	AttrBackendOp     = "backend.op"
	AttrBackendStatus = "backend.status"

	// Offload attributes
	AttrTaskID   = "task.id"
	AttrTaskKind = "task.kind"
)

// Span name prefixes
const (
	SpanPrefixSession = "session."
	SpanPrefixBackend = "backend."
	SpanPrefixOffload = "offload."
)

// SessionID creates an attribute for the session id.
func SessionID(id string) attribute.KeyValue {
	return attribute.String(AttrSessionID, id)
}

// Username creates an attribute for the authenticated username.
func Username(name string) attribute.KeyValue {
	return attribute.String(AttrUsername, name)
}

// DeviceID creates an attribute for the client device id.
func DeviceID(id string) attribute.KeyValue {
	return attribute.String(AttrDeviceID, id)
}

// ClientIP creates an attribute for the client IP address.
func ClientIP(ip string) attribute.KeyValue {
	return attribute.String(AttrClientIP, ip)
}

// ClientAddr creates an attribute for the full client address (IP:port).
func ClientAddr(addr string) attribute.KeyValue {
	return attribute.String(AttrClientAddr, addr)
}

// FilePath creates an attribute for the backend path an operation targets.
func FilePath(path string) attribute.KeyValue {
	return attribute.String(AttrPath, path)
}

// RenameFrom creates an attribute for the source path of a rename.
func RenameFrom(path string) attribute.KeyValue {
	return attribute.String(AttrFrom, path)
}

// RenameTo creates an attribute for the destination path of a rename.
func RenameTo(path string) attribute.KeyValue {
	return attribute.String(AttrTo, path)
}

// BackendStatus creates an attribute for the backend HTTP status code.
func BackendStatus(code int) attribute.KeyValue {
	return attribute.Int(AttrBackendStatus, code)
}

// TaskID creates an attribute for an offload task id.
func TaskID(id string) attribute.KeyValue {
	return attribute.String(AttrTaskID, id)
}

// TaskKind creates an attribute for an offload task kind.
func TaskKind(kind string) attribute.KeyValue {
	return attribute.String(AttrTaskKind, kind)
}

// StartSessionSpan starts a span for one WebSocket operation handled on a
// session. op is the lowercase operation name (e.g. "list_dir", "download").
func StartSessionSpan(ctx context.Context, op, sessionID, username string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := make([]attribute.KeyValue, 0, len(attrs)+3)
	allAttrs = append(allAttrs,
		attribute.String(AttrOp, op),
		SessionID(sessionID),
		Username(username),
	)
	allAttrs = append(allAttrs, attrs...)
	return StartSpan(ctx, SpanPrefixSession+op, trace.WithAttributes(allAttrs...))
}

// StartBackendSpan starts a span for one REST call against the file backend.
func StartBackendSpan(ctx context.Context, op, path string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := make([]attribute.KeyValue, 0, len(attrs)+2)
	allAttrs = append(allAttrs,
		attribute.String(AttrBackendOp, op),
		FilePath(path),
	)
	allAttrs = append(allAttrs, attrs...)
	return StartSpan(ctx, SpanPrefixBackend+op, trace.WithAttributes(allAttrs...))
}

// StartOffloadSpan starts a span for offload dispatch or resolution.
func StartOffloadSpan(ctx context.Context, op, taskID string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := make([]attribute.KeyValue, 0, len(attrs)+1)
	allAttrs = append(allAttrs, TaskID(taskID))
	allAttrs = append(allAttrs, attrs...)
	return StartSpan(ctx, SpanPrefixOffload+op, trace.WithAttributes(allAttrs...))
}
