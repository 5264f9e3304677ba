// Package state holds the process-wide coordination state: the registry of
// connected sessions, the broadcast fan-out, the transfer admission counter,
// the latest load snapshot, and offload task routing. All access goes through
// a readers-writer lock; no lock is ever held across network I/O.
package state

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/skiffworks/skiff/internal/logger"
	"github.com/skiffworks/skiff/internal/offload"
	"github.com/skiffworks/skiff/pkg/protocol"
)

// DefaultMaxTransfers is the transfer admission bound when none is configured.
const DefaultMaxTransfers = 3

// DefaultOffloadTTL is how long a dispatched offload task may remain
// unanswered before its result is refused.
const DefaultOffloadTTL = 60 * time.Second

// ServerState is the shared coordination state. Safe for concurrent use.
type ServerState struct {
	mu sync.RWMutex

	sessions map[string]*Session
	load     *protocol.Load

	maxTransfers    int
	activeTransfers int

	pending    map[string]*pendingOffload
	offloadTTL time.Duration

	metrics Metrics
}

// New creates server state with the given transfer admission bound.
// Non-positive bounds fall back to DefaultMaxTransfers. metrics may be nil.
func New(maxTransfers int, metrics Metrics) *ServerState {
	if maxTransfers <= 0 {
		maxTransfers = DefaultMaxTransfers
	}

	return &ServerState{
		sessions:     make(map[string]*Session),
		load:         protocol.NewLoad(0, 0, false, nil),
		maxTransfers: maxTransfers,
		pending:      make(map[string]*pendingOffload),
		offloadTTL:   DefaultOffloadTTL,
		metrics:      metrics,
	}
}

// Register creates a session for an authenticated connection and adds it to
// the registry. The caller owns the returned handle until Unregister.
func (st *ServerState) Register(username, deviceID string) *Session {
	s := newSession(uuid.NewString(), username, deviceID)

	st.mu.Lock()
	st.sessions[s.ID] = s
	n := len(st.sessions)
	st.mu.Unlock()

	if st.metrics != nil {
		st.metrics.SetActiveSessions(n)
	}
	return s
}

// Unregister removes a session, closes its done channel, and cancels any
// offload tasks pending on its behalf. Unknown ids are a no-op.
func (st *ServerState) Unregister(id string) {
	st.mu.Lock()
	s, ok := st.sessions[id]
	if ok {
		delete(st.sessions, id)
	}
	n := len(st.sessions)

	var orphaned []*pendingOffload
	for taskID, p := range st.pending {
		if p.requesterID == id {
			delete(st.pending, taskID)
			orphaned = append(orphaned, p)
		}
	}
	st.mu.Unlock()

	if !ok {
		return
	}

	s.close()
	for _, p := range orphaned {
		close(p.result)
	}

	if st.metrics != nil {
		st.metrics.SetActiveSessions(n)
	}
}

// UpdateCapabilities replaces a session's reported capabilities. Unknown ids
// are a no-op.
func (st *ServerState) UpdateCapabilities(id string, caps *protocol.ClientCapabilities) {
	st.mu.Lock()
	defer st.mu.Unlock()

	if s, ok := st.sessions[id]; ok {
		s.capabilities = caps
	}
}

// Sessions returns a snapshot of all registered sessions ordered by
// connection time.
func (st *ServerState) Sessions() []SessionInfo {
	st.mu.RLock()
	infos := make([]SessionInfo, 0, len(st.sessions))
	for _, s := range st.sessions {
		var caps *protocol.ClientCapabilities
		if s.capabilities != nil {
			c := *s.capabilities
			caps = &c
		}
		infos = append(infos, SessionInfo{
			ID:           s.ID,
			Username:     s.Username,
			DeviceID:     s.DeviceID,
			ConnectedAt:  s.ConnectedAt,
			Capabilities: caps,
			QueueLen:     len(s.queue),
		})
	}
	st.mu.RUnlock()

	sort.Slice(infos, func(i, j int) bool {
		if infos[i].ConnectedAt.Equal(infos[j].ConnectedAt) {
			return infos[i].ID < infos[j].ID
		}
		return infos[i].ConnectedAt.Before(infos[j].ConnectedAt)
	})
	return infos
}

// SessionCount returns the number of registered sessions.
func (st *ServerState) SessionCount() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// StartTransfer admits a transfer when capacity remains. The check and the
// increment are indivisible under the lock; a split check would overbook
// under contention.
func (st *ServerState) StartTransfer() bool {
	st.mu.Lock()
	if st.activeTransfers >= st.maxTransfers {
		st.mu.Unlock()
		return false
	}
	st.activeTransfers++
	n := st.activeTransfers
	st.mu.Unlock()

	if st.metrics != nil {
		st.metrics.SetActiveTransfers(n)
	}
	return true
}

// EndTransfer releases a transfer credit, flooring at zero.
func (st *ServerState) EndTransfer() {
	st.mu.Lock()
	if st.activeTransfers > 0 {
		st.activeTransfers--
	}
	n := st.activeTransfers
	st.mu.Unlock()

	if st.metrics != nil {
		st.metrics.SetActiveTransfers(n)
	}
}

// ActiveTransfers reports the number of in-flight transfers.
func (st *ServerState) ActiveTransfers() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.activeTransfers
}

// MaxTransfers returns the configured admission bound.
func (st *ServerState) MaxTransfers() int {
	return st.maxTransfers
}

// ObserveBackendOp forwards a backend call observation to the metrics sink.
func (st *ServerState) ObserveBackendOp(op string, seconds float64, success bool) {
	if st.metrics != nil {
		st.metrics.ObserveBackendOp(op, seconds, success)
	}
}

// SetLoad replaces the current load snapshot.
func (st *ServerState) SetLoad(load *protocol.Load) {
	st.mu.Lock()
	st.load = load
	st.mu.Unlock()
}

// LoadSnapshot returns the latest load snapshot. Never nil; before the first
// probe tick it is the zero snapshot.
func (st *ServerState) LoadSnapshot() *protocol.Load {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.load
}

// Broadcast fans a message out to every session queue without blocking. A
// session whose queue is full loses the message; other sessions are not
// affected.
func (st *ServerState) Broadcast(msg protocol.Message) {
	st.mu.RLock()
	subs := make([]*Session, 0, len(st.sessions))
	for _, s := range st.sessions {
		subs = append(subs, s)
	}
	st.mu.RUnlock()

	for _, s := range subs {
		if s.TrySend(msg) {
			continue
		}
		logger.Warn("Dropping broadcast for slow session",
			logger.SessionID(s.ID),
			slog.Int(logger.KeyQueueLen, len(s.queue)))
		if st.metrics != nil {
			st.metrics.IncBroadcastDropped()
		}
	}
}

// FindOffloadCandidate returns any session whose reported capabilities
// qualify for the task. Selection order is arbitrary.
func (st *ServerState) FindOffloadCandidate(task protocol.OffloadTask) (*Session, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()

	s := st.findCandidateLocked(task)
	return s, s != nil
}

func (st *ServerState) findCandidateLocked(task protocol.OffloadTask) *Session {
	for _, s := range st.sessions {
		if offload.Qualifies(s.capabilities, task) {
			return s
		}
	}
	return nil
}
