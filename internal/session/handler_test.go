package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skiffworks/skiff/internal/auth"
	"github.com/skiffworks/skiff/internal/backend"
	"github.com/skiffworks/skiff/internal/state"
	"github.com/skiffworks/skiff/pkg/protocol"
)

// fakeConn is an in-memory Conn so handler tests need no sockets.
type fakeConn struct {
	in     chan []byte
	out    chan []byte
	closed chan struct{}
	once   sync.Once
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		in:     make(chan []byte, 16),
		out:    make(chan []byte, 64),
		closed: make(chan struct{}),
	}
}

func (c *fakeConn) ReadMessage(ctx context.Context) ([]byte, error) {
	select {
	case data := <-c.in:
		return data, nil
	case <-c.closed:
		return nil, errors.New("connection closed")
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *fakeConn) WriteMessage(ctx context.Context, data []byte) error {
	select {
	case <-c.closed:
		return errors.New("connection closed")
	default:
	}

	select {
	case c.out <- data:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *fakeConn) Close() error {
	c.once.Do(func() { close(c.closed) })
	return nil
}

func (c *fakeConn) push(t *testing.T, msg protocol.Message) {
	t.Helper()
	data, err := protocol.Encode(msg)
	require.NoError(t, err)
	c.pushRaw(t, data)
}

func (c *fakeConn) pushRaw(t *testing.T, data []byte) {
	t.Helper()
	select {
	case c.in <- data:
	case <-time.After(time.Second):
		t.Fatal("handler stopped reading")
	}
}

func (c *fakeConn) next(t *testing.T) protocol.Message {
	t.Helper()
	select {
	case data := <-c.out:
		msg, err := protocol.Decode(data)
		require.NoError(t, err)
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("no frame written within 2s")
		return nil
	}
}

func (c *fakeConn) expectClosed(t *testing.T) {
	t.Helper()
	select {
	case <-c.closed:
	case <-time.After(2 * time.Second):
		t.Fatal("connection not closed within 2s")
	}
}

// fakeBackend is a scriptable Backend: err applies to every call, entries to
// ListDir, content to Download.
type fakeBackend struct {
	mu      sync.Mutex
	entries []backend.FileEntry
	content []byte
	err     error

	calls         []string
	lastUpload    []byte
	lastOverwrite bool
}

func (b *fakeBackend) record(op string) {
	b.mu.Lock()
	b.calls = append(b.calls, op)
	b.mu.Unlock()
}

func (b *fakeBackend) recorded() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.calls...)
}

func (b *fakeBackend) ListDir(_ context.Context, _ string) ([]backend.FileEntry, error) {
	b.record("list")
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.entries, b.err
}

func (b *fakeBackend) Download(_ context.Context, _ string) ([]byte, error) {
	b.record("download")
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.content, b.err
}

func (b *fakeBackend) Upload(_ context.Context, _ string, content []byte, overwrite bool) error {
	b.record("upload")
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lastUpload = content
	b.lastOverwrite = overwrite
	return b.err
}

func (b *fakeBackend) Delete(_ context.Context, _ string) error {
	b.record("delete")
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.err
}

func (b *fakeBackend) Rename(_ context.Context, _, _ string) error {
	b.record("rename")
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.err
}

func (b *fakeBackend) Mkdir(_ context.Context, _ string) error {
	b.record("mkdir")
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.err
}

type fixture struct {
	handler *Handler
	state   *state.ServerState
	backend *fakeBackend
	tokens  *auth.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureMax(t, 3)
}

func newFixtureMax(t *testing.T, maxTransfers int) *fixture {
	t.Helper()

	tokens, err := auth.NewService(auth.Config{
		Secret: []byte("0123456789abcdef0123456789abcdef"),
	})
	require.NoError(t, err)

	fb := &fakeBackend{}
	st := state.New(maxTransfers, nil)

	return &fixture{
		handler: NewHandler(tokens, auth.AllowNonEmpty{}, fb, st),
		state:   st,
		backend: fb,
		tokens:  tokens,
	}
}

func (f *fixture) connect(t *testing.T) *fakeConn {
	t.Helper()

	conn := newFakeConn()
	go f.handler.Handle(context.Background(), conn, "192.0.2.10:51000")
	t.Cleanup(func() { conn.Close() })
	return conn
}

func (f *fixture) authenticate(t *testing.T, conn *fakeConn, username string) *protocol.AuthSuccess {
	t.Helper()

	conn.push(t, protocol.NewLogin(username, "hunter22"))
	msg := conn.next(t)
	authed, ok := msg.(*protocol.AuthSuccess)
	require.True(t, ok, "expected auth_success, got %s", msg.Kind())
	return authed
}

func TestLoginHandshake(t *testing.T) {
	f := newFixture(t)
	conn := f.connect(t)

	authed := f.authenticate(t, conn, "alice")
	assert.NotEmpty(t, authed.AccessToken)
	assert.NotEmpty(t, authed.RefreshToken)
	assert.Equal(t, int64(900), authed.ExpiresIn)

	claims, err := f.tokens.VerifyAccess(authed.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username())

	assert.Equal(t, 1, f.state.SessionCount())
}

func TestLoginRejectedClosesConnection(t *testing.T) {
	f := newFixture(t)
	conn := f.connect(t)

	conn.push(t, protocol.NewLogin("alice", ""))

	msg := conn.next(t)
	authErr, ok := msg.(*protocol.AuthError)
	require.True(t, ok, "expected auth_error, got %s", msg.Kind())
	assert.Equal(t, "Authentication required", authErr.Message)

	conn.expectClosed(t)
	assert.Zero(t, f.state.SessionCount())
}

func TestAuthDeadline(t *testing.T) {
	f := newFixture(t)
	f.handler.authTimeout = 80 * time.Millisecond
	conn := f.connect(t)

	// Non-login traffic does not satisfy the handshake.
	conn.push(t, protocol.NewPing())

	msg := conn.next(t)
	authErr, ok := msg.(*protocol.AuthError)
	require.True(t, ok, "expected auth_error, got %s", msg.Kind())
	assert.Equal(t, "Authentication required", authErr.Message)
	conn.expectClosed(t)
}

func TestHandshakeIgnoresGarbage(t *testing.T) {
	f := newFixture(t)
	conn := f.connect(t)

	conn.pushRaw(t, []byte("{not json"))
	conn.pushRaw(t, []byte(`{"type":"frobnicate"}`))

	authed := f.authenticate(t, conn, "bob")
	assert.NotEmpty(t, authed.AccessToken)
}

func TestDisconnectUnregistersSession(t *testing.T) {
	f := newFixture(t)
	conn := f.connect(t)
	f.authenticate(t, conn, "carol")

	require.Equal(t, 1, f.state.SessionCount())
	conn.Close()

	assert.Eventually(t, func() bool {
		return f.state.SessionCount() == 0
	}, 2*time.Second, 10*time.Millisecond)
}
