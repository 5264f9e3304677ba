// Package session runs the per-connection lifecycle: authentication
// handshake, request dispatch, and the writer goroutine that serializes all
// outbound traffic for one client.
package session

import "context"

// Conn is the wire surface the handler needs from a WebSocket connection.
// The transport layer adapts its concrete connection type to this interface;
// tests substitute an in-memory pipe.
type Conn interface {
	// ReadMessage returns the next complete frame. It honors context
	// cancellation and returns an error once the peer is gone.
	ReadMessage(ctx context.Context) ([]byte, error)

	// WriteMessage writes one complete frame.
	WriteMessage(ctx context.Context, data []byte) error

	// Close tears the connection down. Safe to call more than once.
	Close() error
}
