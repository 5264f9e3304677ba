package state

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skiffworks/skiff/pkg/protocol"
)

type fakeMetrics struct {
	mu        sync.Mutex
	sessions  int
	transfers int
	dropped   int
}

func (m *fakeMetrics) SetActiveSessions(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions = n
}

func (m *fakeMetrics) SetActiveTransfers(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transfers = n
}

func (m *fakeMetrics) IncBroadcastDropped() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dropped++
}

func (m *fakeMetrics) ObserveBackendOp(string, float64, bool) {}

func (m *fakeMetrics) snapshot() (sessions, transfers, dropped int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions, m.transfers, m.dropped
}

// recvOne pops the next queued message or fails the test.
func recvOne(t *testing.T, s *Session) protocol.Message {
	t.Helper()
	select {
	case msg := <-s.Queue():
		return msg
	case <-time.After(time.Second):
		t.Fatal("no message queued")
		return nil
	}
}

func TestRegisterUnregister(t *testing.T) {
	metrics := &fakeMetrics{}
	st := New(3, metrics)

	s1 := st.Register("alice", "laptop")
	s2 := st.Register("bob", "")

	assert.NotEmpty(t, s1.ID)
	assert.NotEqual(t, s1.ID, s2.ID)
	assert.Equal(t, 2, st.SessionCount())

	sessions, _, _ := metrics.snapshot()
	assert.Equal(t, 2, sessions)

	st.Unregister(s1.ID)
	assert.Equal(t, 1, st.SessionCount())

	select {
	case <-s1.Done():
	default:
		t.Error("done channel should be closed after unregister")
	}

	// Unknown ids are a no-op.
	st.Unregister("nope")
	assert.Equal(t, 1, st.SessionCount())
}

func TestUpdateCapabilities(t *testing.T) {
	st := New(3, nil)
	s := st.Register("alice", "")

	caps := &protocol.ClientCapabilities{CPUCores: 8, OnACPower: true, RAMFreeMB: 1024}
	st.UpdateCapabilities(s.ID, caps)

	infos := st.Sessions()
	require.Len(t, infos, 1)
	require.NotNil(t, infos[0].Capabilities)
	assert.Equal(t, uint32(8), infos[0].Capabilities.CPUCores)

	// Unknown session ids are ignored.
	st.UpdateCapabilities("nope", caps)
	assert.Len(t, st.Sessions(), 1)
}

func TestSessionsSnapshotOrder(t *testing.T) {
	st := New(3, nil)
	st.Register("alice", "")
	st.Register("bob", "")
	st.Register("carol", "")

	infos := st.Sessions()
	require.Len(t, infos, 3)
	for i := 1; i < len(infos); i++ {
		assert.False(t, infos[i].ConnectedAt.Before(infos[i-1].ConnectedAt))
	}
}

func TestTransferAdmission(t *testing.T) {
	metrics := &fakeMetrics{}
	st := New(2, metrics)

	assert.True(t, st.StartTransfer())
	assert.True(t, st.StartTransfer())
	assert.False(t, st.StartTransfer(), "third transfer must be refused at max 2")
	assert.Equal(t, 2, st.ActiveTransfers())

	st.EndTransfer()
	assert.Equal(t, 1, st.ActiveTransfers())
	assert.True(t, st.StartTransfer())

	_, transfers, _ := metrics.snapshot()
	assert.Equal(t, 2, transfers)
}

func TestEndTransferFloorsAtZero(t *testing.T) {
	st := New(2, nil)

	st.EndTransfer()
	st.EndTransfer()
	assert.Equal(t, 0, st.ActiveTransfers())

	assert.True(t, st.StartTransfer())
	assert.Equal(t, 1, st.ActiveTransfers())
}

func TestTransferAdmissionUnderContention(t *testing.T) {
	const max = 3
	st := New(max, nil)

	stop := make(chan struct{})
	var sampler sync.WaitGroup
	sampler.Add(1)
	go func() {
		defer sampler.Done()
		for {
			select {
			case <-stop:
				return
			default:
				n := st.ActiveTransfers()
				assert.GreaterOrEqual(t, n, 0)
				assert.LessOrEqual(t, n, max)
			}
		}
	}()

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 200 {
				if st.StartTransfer() {
					st.EndTransfer()
				}
			}
		}()
	}
	wg.Wait()
	close(stop)
	sampler.Wait()

	assert.Equal(t, 0, st.ActiveTransfers())
}

func TestBroadcastReachesAllSessions(t *testing.T) {
	st := New(3, nil)
	s1 := st.Register("alice", "")
	s2 := st.Register("bob", "")

	msg := protocol.NewLoad(10, 1024, false, nil)
	st.Broadcast(msg)

	assert.Same(t, protocol.Message(msg), recvOne(t, s1))
	assert.Same(t, protocol.Message(msg), recvOne(t, s2))
}

func TestBroadcastSlowSessionDoesNotBlockOthers(t *testing.T) {
	metrics := &fakeMetrics{}
	st := New(3, metrics)
	slow := st.Register("slow", "")
	fast := st.Register("fast", "")

	// Fill the slow session's queue to capacity.
	for range QueueCapacity {
		require.True(t, slow.TrySend(protocol.NewPong()))
	}
	require.False(t, slow.TrySend(protocol.NewPong()))

	msg := protocol.NewLoad(50, 512, false, nil)
	st.Broadcast(msg)

	// The fast session still receives the broadcast.
	assert.Same(t, protocol.Message(msg), recvOne(t, fast))

	_, _, dropped := metrics.snapshot()
	assert.Equal(t, 1, dropped)
}

func TestBroadcastAfterUnregister(t *testing.T) {
	metrics := &fakeMetrics{}
	st := New(3, metrics)
	s := st.Register("alice", "")
	st.Unregister(s.ID)

	st.Broadcast(protocol.NewPong())

	_, _, dropped := metrics.snapshot()
	assert.Equal(t, 0, dropped)
}

func TestSendUnblocksOnClose(t *testing.T) {
	st := New(3, nil)
	s := st.Register("alice", "")

	for range QueueCapacity {
		require.True(t, s.TrySend(protocol.NewPong()))
	}

	sent := make(chan bool, 1)
	go func() {
		sent <- s.Send(protocol.NewPong())
	}()

	st.Unregister(s.ID)

	select {
	case ok := <-sent:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("Send did not unblock after unregister")
	}
}

func TestLoadSnapshot(t *testing.T) {
	st := New(3, nil)

	initial := st.LoadSnapshot()
	require.NotNil(t, initial)
	assert.Zero(t, initial.CPUPercent)
	assert.Empty(t, initial.Hints)

	load := protocol.NewLoad(85, 256, true, []protocol.LoadHint{protocol.HintThrottleTransfers})
	st.SetLoad(load)
	assert.Same(t, load, st.LoadSnapshot())
}

func TestFindOffloadCandidate(t *testing.T) {
	st := New(3, nil)
	task := protocol.NewSearchTask("report", nil)

	// No sessions at all.
	_, ok := st.FindOffloadCandidate(task)
	assert.False(t, ok)

	// A session without reported capabilities does not qualify.
	plain := st.Register("plain", "")
	_, ok = st.FindOffloadCandidate(task)
	assert.False(t, ok)

	// A capable session qualifies.
	capable := st.Register("capable", "")
	st.UpdateCapabilities(capable.ID, &protocol.ClientCapabilities{
		CPUCores:         8,
		RAMFreeMB:        2048,
		OnACPower:        true,
		CanSearchLocally: true,
	})

	found, ok := st.FindOffloadCandidate(task)
	require.True(t, ok)
	assert.Equal(t, capable.ID, found.ID)

	// A battery-powered session does not.
	st.UpdateCapabilities(capable.ID, &protocol.ClientCapabilities{
		CPUCores:         8,
		RAMFreeMB:        2048,
		OnACPower:        false,
		CanSearchLocally: true,
	})
	_, ok = st.FindOffloadCandidate(task)
	assert.False(t, ok)

	_ = plain
}
