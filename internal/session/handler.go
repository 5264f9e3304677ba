package session

import (
	"context"
	"time"

	"github.com/skiffworks/skiff/internal/auth"
	"github.com/skiffworks/skiff/internal/backend"
	"github.com/skiffworks/skiff/internal/logger"
	"github.com/skiffworks/skiff/internal/state"
	"github.com/skiffworks/skiff/pkg/protocol"
)

// DefaultAuthTimeout bounds how long a fresh connection may take to present
// credentials before it is dropped.
const DefaultAuthTimeout = 30 * time.Second

// writeTimeout bounds a single frame write so a stalled peer cannot pin the
// writer goroutine.
const writeTimeout = 10 * time.Second

const (
	authRequiredMessage     = "Authentication required"
	tooManyTransfersMessage = "Too many concurrent transfers"
)

// Backend is the subset of the gateway client the dispatcher calls.
type Backend interface {
	ListDir(ctx context.Context, path string) ([]backend.FileEntry, error)
	Download(ctx context.Context, path string) ([]byte, error)
	Upload(ctx context.Context, path string, content []byte, overwrite bool) error
	Delete(ctx context.Context, path string) error
	Rename(ctx context.Context, from, to string) error
	Mkdir(ctx context.Context, path string) error
}

// Handler drives one WebSocket session from handshake to teardown.
type Handler struct {
	tokens   *auth.Service
	verifier auth.CredentialVerifier
	backend  Backend
	state    *state.ServerState

	authTimeout time.Duration
}

// NewHandler builds a session handler over the given collaborators.
func NewHandler(tokens *auth.Service, verifier auth.CredentialVerifier, gw Backend, st *state.ServerState) *Handler {
	return &Handler{
		tokens:      tokens,
		verifier:    verifier,
		backend:     gw,
		state:       st,
		authTimeout: DefaultAuthTimeout,
	}
}

// Handle runs the connection until the client disconnects or the handshake
// fails. It blocks for the lifetime of the session.
func (h *Handler) Handle(ctx context.Context, conn Conn, remoteAddr string) {
	defer conn.Close()

	logger.Info("WebSocket session connected", logger.ClientIP(remoteAddr))

	login, err := h.awaitLogin(ctx, conn)
	if err != nil {
		logger.Warn("Authentication window closed", logger.ClientIP(remoteAddr), logger.Err(err))
		h.writeDirect(conn, protocol.NewAuthError(authRequiredMessage))
		return
	}
	if !h.verifier.Verify(login.Username, login.Password) {
		logger.Warn("Authentication rejected", logger.ClientIP(remoteAddr), logger.Username(login.Username))
		h.writeDirect(conn, protocol.NewAuthError(authRequiredMessage))
		return
	}

	pair, err := h.tokens.Issue(login.Username, "")
	if err != nil {
		logger.Error("Token issue failed", logger.Username(login.Username), logger.Err(err))
		h.writeDirect(conn, protocol.NewAuthError(authRequiredMessage))
		return
	}

	sess := h.state.Register(login.Username, "")
	defer h.state.Unregister(sess.ID)
	go h.writeLoop(conn, sess)

	logger.Info("Session authenticated",
		logger.SessionID(sess.ID),
		logger.Username(sess.Username),
		logger.ClientIP(remoteAddr))

	if !sess.Send(protocol.NewAuthSuccess(pair.AccessToken, pair.RefreshToken, pair.ExpiresIn)) {
		return
	}

	h.readLoop(ctx, conn, sess)
	logger.Info("Session disconnected", logger.SessionID(sess.ID), logger.Username(sess.Username))
}

// awaitLogin reads frames until a login message arrives or the auth deadline
// passes. Anything that is not a parseable login is ignored.
func (h *Handler) awaitLogin(ctx context.Context, conn Conn) (*protocol.Login, error) {
	ctx, cancel := context.WithTimeout(ctx, h.authTimeout)
	defer cancel()

	for {
		data, err := conn.ReadMessage(ctx)
		if err != nil {
			return nil, err
		}

		msg, err := protocol.Decode(data)
		if err != nil {
			logger.Debug("Ignoring unparseable frame during handshake", logger.Err(err))
			continue
		}

		login, ok := msg.(*protocol.Login)
		if !ok {
			logger.Debug("Ignoring message during handshake", "type", string(msg.Kind()))
			continue
		}
		return login, nil
	}
}

// readLoop decodes and dispatches inbound frames one at a time, which keeps
// replies ordered with their requests.
func (h *Handler) readLoop(ctx context.Context, conn Conn, sess *state.Session) {
	for {
		data, err := conn.ReadMessage(ctx)
		if err != nil {
			return
		}

		msg, err := protocol.Decode(data)
		if err != nil {
			logger.Debug("Ignoring unparseable frame", logger.SessionID(sess.ID), logger.Err(err))
			continue
		}

		if !h.dispatch(ctx, sess, msg) {
			return
		}
	}
}

// writeLoop is the sole writer for the connection. It drains the session
// queue until the session closes or a write fails; on write failure it
// unregisters the session so blocked senders unblock.
func (h *Handler) writeLoop(conn Conn, sess *state.Session) {
	for {
		select {
		case msg := <-sess.Queue():
			if err := h.writeWire(conn, msg); err != nil {
				logger.Debug("Session write failed", logger.SessionID(sess.ID), logger.Err(err))
				h.state.Unregister(sess.ID)
				conn.Close()
				return
			}
		case <-sess.Done():
			return
		}
	}
}

func (h *Handler) writeWire(conn Conn, msg protocol.Message) error {
	data, err := protocol.Encode(msg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	return conn.WriteMessage(ctx, data)
}

// writeDirect writes a message before the writer goroutine exists. Write
// errors are ignored: the peer is usually already gone.
func (h *Handler) writeDirect(conn Conn, msg protocol.Message) {
	if err := h.writeWire(conn, msg); err != nil {
		logger.Debug("Handshake write failed", logger.Err(err))
	}
}
