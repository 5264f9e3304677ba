package state

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/skiffworks/skiff/internal/logger"
	"github.com/skiffworks/skiff/pkg/protocol"
)

// pendingOffload tracks a dispatched task awaiting its result.
type pendingOffload struct {
	requesterID string
	result      chan []byte
	expires     time.Time
}

// SubmitOffload selects a qualifying session, enqueues an offload_request to
// it, and registers the task for result routing. requesterID names the
// session the work is performed for and may be empty when the server itself
// is the requester. The returned channel yields the result bytes exactly
// once; it is closed without a value on expiry or requester teardown. ok is
// false when no session qualifies or the candidate's queue is full.
func (st *ServerState) SubmitOffload(task protocol.OffloadTask, requesterID string) (taskID string, result <-chan []byte, ok bool) {
	now := time.Now()

	st.mu.Lock()
	st.pruneOffloadsLocked(now)

	candidate := st.findCandidateLocked(task)
	if candidate == nil {
		st.mu.Unlock()
		return "", nil, false
	}

	taskID = uuid.NewString()
	p := &pendingOffload{
		requesterID: requesterID,
		result:      make(chan []byte, 1),
		expires:     now.Add(st.offloadTTL),
	}
	st.pending[taskID] = p
	st.mu.Unlock()

	if !candidate.TrySend(protocol.NewOffloadRequest(taskID, task)) {
		// Unregister of the requester may have raced us here and already
		// removed and closed the entry. Only the remover closes the channel.
		st.mu.Lock()
		_, present := st.pending[taskID]
		if present {
			delete(st.pending, taskID)
		}
		st.mu.Unlock()
		if present {
			close(p.result)
		}
		return "", nil, false
	}

	logger.Debug("Offload task dispatched",
		logger.TaskID(taskID),
		logger.SessionID(candidate.ID),
		slog.String(logger.KeyTaskKind, string(task.Kind)))
	return taskID, p.result, true
}

// ResolveOffload routes a completed result to whoever submitted the task.
// Unknown or expired task ids are dropped with a warning.
func (st *ServerState) ResolveOffload(taskID string, result []byte) bool {
	st.mu.Lock()
	p, ok := st.pending[taskID]
	if ok {
		delete(st.pending, taskID)
	}
	st.mu.Unlock()

	if !ok {
		logger.Warn("Dropping offload result for unknown task", logger.TaskID(taskID))
		return false
	}

	if time.Now().After(p.expires) {
		close(p.result)
		logger.Warn("Dropping offload result for expired task", logger.TaskID(taskID))
		return false
	}

	p.result <- result
	close(p.result)
	return true
}

// pruneOffloadsLocked drops expired pending tasks. Caller holds the write lock.
func (st *ServerState) pruneOffloadsLocked(now time.Time) {
	for taskID, p := range st.pending {
		if now.After(p.expires) {
			delete(st.pending, taskID)
			close(p.result)
		}
	}
}
