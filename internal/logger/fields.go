package logger

import "log/slog"

// Standard field keys for structured logging. Use these consistently across
// all log statements so the output stays queryable after aggregation.
const (
	// Distributed tracing
	KeyTraceID = "trace_id"
	KeySpanID  = "span_id"

	// Session and client identification
	KeySessionID = "session_id"
	KeyUsername  = "username"
	KeyDeviceID  = "device_id"
	KeyClientIP  = "client_ip"
	KeyRequestID = "request_id"

	// Operations
	KeyOp     = "op"
	KeyPath   = "path"
	KeyFrom   = "from"
	KeyTo     = "to"
	KeySize   = "size"
	KeyMime   = "mime_type"
	KeyEvent  = "event"
	KeyStatus = "status"

	// Load and transfers
	KeyCPUPercent = "cpu_percent"
	KeyRAMFreeMB  = "ram_free_mb"
	KeyTransfers  = "transfers"
	KeyHints      = "hints"

	// Offload
	KeyTaskID   = "task_id"
	KeyTaskKind = "task_kind"

	// Fan-out
	KeyQueueLen = "queue_len"
	KeyDropped  = "dropped"

	// Misc
	KeyAddr       = "addr"
	KeyError      = "error"
	KeyDurationMs = "duration_ms"
)

// Type-safe attribute constructors for the keys used on hot paths.

// SessionID returns a slog.Attr for a session identifier
func SessionID(id string) slog.Attr {
	return slog.String(KeySessionID, id)
}

// Username returns a slog.Attr for the authenticated subject
func Username(name string) slog.Attr {
	return slog.String(KeyUsername, name)
}

// ClientIP returns a slog.Attr for a client IP address
func ClientIP(addr string) slog.Attr {
	return slog.String(KeyClientIP, addr)
}

// Op returns a slog.Attr for an operation name
func Op(name string) slog.Attr {
	return slog.String(KeyOp, name)
}

// Path returns a slog.Attr for a file or directory path
func Path(p string) slog.Attr {
	return slog.String(KeyPath, p)
}

// TaskID returns a slog.Attr for an offload task identifier
func TaskID(id string) slog.Attr {
	return slog.String(KeyTaskID, id)
}

// DurationMs returns a slog.Attr for duration in milliseconds
func DurationMs(ms float64) slog.Attr {
	return slog.Float64(KeyDurationMs, ms)
}

// Err returns a slog.Attr for an error, or an empty attr for nil
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}
