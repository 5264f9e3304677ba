package api

import (
	"context"
	"net/http"

	"github.com/coder/websocket"

	"github.com/skiffworks/skiff/internal/logger"
	"github.com/skiffworks/skiff/internal/session"
)

// maxMessageBytes bounds a single inbound frame. Uploads ride in one JSON
// frame with base64 content, so the limit has to admit whole files.
const maxMessageBytes = 64 << 20

// serveWS upgrades the request and runs the session lifecycle on the
// resulting connection. The call blocks until the session ends.
func serveWS(sessions *session.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: []string{"*"},
		})
		if err != nil {
			logger.Warn("WebSocket upgrade failed",
				logger.Err(err),
				logger.ClientIP(r.RemoteAddr))
			return
		}
		conn.SetReadLimit(maxMessageBytes)

		sessions.Handle(r.Context(), newWSConn(conn), r.RemoteAddr)
	}
}

// wsConn adapts a websocket connection to the session.Conn interface.
type wsConn struct {
	conn *websocket.Conn
}

func newWSConn(conn *websocket.Conn) *wsConn {
	return &wsConn{conn: conn}
}

// ReadMessage returns the next frame payload. Text and binary frames carry
// the same JSON messages, so the frame type is discarded.
func (c *wsConn) ReadMessage(ctx context.Context) ([]byte, error) {
	_, data, err := c.conn.Read(ctx)
	return data, err
}

// WriteMessage sends one message as a text frame.
func (c *wsConn) WriteMessage(ctx context.Context, data []byte) error {
	return c.conn.Write(ctx, websocket.MessageText, data)
}

// Close performs the closing handshake with a normal closure status.
func (c *wsConn) Close() error {
	return c.conn.Close(websocket.StatusNormalClosure, "")
}
