package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/skiffworks/skiff/internal/state"
	"github.com/skiffworks/skiff/internal/telemetry"
	"github.com/skiffworks/skiff/pkg/protocol"
)

// DefaultOffloadWait is how long an offload request waits for a result when
// the caller does not say.
const DefaultOffloadWait = 10 * time.Second

// MaxOffloadWait caps the caller-supplied wait so it stays inside the task
// routing TTL.
const MaxOffloadWait = 60 * time.Second

// OffloadHandler dispatches offload tasks to capable sessions on behalf of
// API callers.
type OffloadHandler struct {
	state *state.ServerState
}

// NewOffloadHandler creates an offload handler.
func NewOffloadHandler(st *state.ServerState) *OffloadHandler {
	return &OffloadHandler{state: st}
}

// OffloadRequest is the offload dispatch request body. TaskType selects which
// of the remaining fields apply.
type OffloadRequest struct {
	TaskType string   `json:"task_type"`
	Path     string   `json:"path,omitempty"`
	Width    uint32   `json:"width,omitempty"`
	Height   uint32   `json:"height,omitempty"`
	Query    string   `json:"query,omitempty"`
	Paths    []string `json:"paths,omitempty"`
	WaitMs   int64    `json:"wait_ms,omitempty"`
}

// OffloadResponse carries the completed task result.
type OffloadResponse struct {
	TaskID string `json:"task_id"`
	Result []byte `json:"result"`
}

// Submit handles POST /api/offload. The request blocks until the task result
// arrives or the wait window closes.
func (h *OffloadHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req OffloadRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	var task protocol.OffloadTask
	switch protocol.TaskKind(req.TaskType) {
	case protocol.TaskThumbnail:
		if req.Path == "" {
			BadRequest(w, "Path is required for thumbnail tasks")
			return
		}
		task = protocol.NewThumbnailTask(req.Path, nil, req.Width, req.Height)
	case protocol.TaskSearch:
		if req.Query == "" {
			BadRequest(w, "Query is required for search tasks")
			return
		}
		task = protocol.NewSearchTask(req.Query, req.Paths)
	default:
		BadRequest(w, "Unknown task type")
		return
	}

	taskID, result, ok := h.state.SubmitOffload(task, "")
	if !ok {
		ServiceUnavailable(w, "No connected client can take the task")
		return
	}

	ctx, span := telemetry.StartOffloadSpan(r.Context(), "dispatch", taskID,
		telemetry.TaskKind(string(task.Kind)))
	defer span.End()

	wait := DefaultOffloadWait
	if req.WaitMs > 0 {
		wait = time.Duration(req.WaitMs) * time.Millisecond
		if wait > MaxOffloadWait {
			wait = MaxOffloadWait
		}
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case data, ok := <-result:
		if !ok {
			GatewayTimeout(w, "Offload task expired before a result arrived")
			return
		}
		WriteJSONOK(w, OffloadResponse{TaskID: taskID, Result: data})
	case <-timer.C:
		telemetry.RecordError(ctx, context.DeadlineExceeded)
		GatewayTimeout(w, "Offload result did not arrive in time")
	case <-ctx.Done():
	}
}
