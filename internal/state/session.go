package state

import (
	"sync"
	"time"

	"github.com/skiffworks/skiff/pkg/protocol"
)

// QueueCapacity bounds each session's outbound message queue.
const QueueCapacity = 32

// Session is the server-side handle for one authenticated connection. The
// capabilities pointer is guarded by the owning ServerState's lock; the queue
// and done channel are safe to use directly.
type Session struct {
	// ID is the server-assigned session identifier.
	ID string

	// Username is the authenticated subject.
	Username string

	// DeviceID is the optional device identifier from the login token.
	DeviceID string

	// ConnectedAt is when the session registered.
	ConnectedAt time.Time

	capabilities *protocol.ClientCapabilities

	queue chan protocol.Message
	done  chan struct{}
	once  sync.Once
}

func newSession(id, username, deviceID string) *Session {
	return &Session{
		ID:          id,
		Username:    username,
		DeviceID:    deviceID,
		ConnectedAt: time.Now(),
		queue:       make(chan protocol.Message, QueueCapacity),
		done:        make(chan struct{}),
	}
}

// Queue exposes the outbound stream for the session's writer goroutine.
func (s *Session) Queue() <-chan protocol.Message {
	return s.queue
}

// Done is closed when the session is unregistered.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// TrySend enqueues a message without blocking. It returns false when the
// queue is full or the session is closed; the message is then dropped.
func (s *Session) TrySend(msg protocol.Message) bool {
	select {
	case <-s.done:
		return false
	default:
	}

	select {
	case s.queue <- msg:
		return true
	case <-s.done:
		return false
	default:
		return false
	}
}

// Send enqueues a message, waiting for queue space. It returns false once
// the session is closed. Replies use Send so a burst of broadcasts cannot
// discard them.
func (s *Session) Send(msg protocol.Message) bool {
	select {
	case s.queue <- msg:
		return true
	case <-s.done:
		return false
	}
}

func (s *Session) close() {
	s.once.Do(func() { close(s.done) })
}

// SessionInfo is a point-in-time snapshot of a session, as served by the
// sessions API.
type SessionInfo struct {
	ID           string                       `json:"id"`
	Username     string                       `json:"username"`
	DeviceID     string                       `json:"device_id,omitempty"`
	ConnectedAt  time.Time                    `json:"connected_at"`
	Capabilities *protocol.ClientCapabilities `json:"capabilities,omitempty"`
	QueueLen     int                          `json:"queue_len"`
}
