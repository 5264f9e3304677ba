package handlers

import (
	"net/http"

	"github.com/skiffworks/skiff/internal/state"
)

// SessionsHandler serves the connected-session listing.
type SessionsHandler struct {
	state *state.ServerState
}

// NewSessionsHandler creates a sessions handler.
func NewSessionsHandler(st *state.ServerState) *SessionsHandler {
	return &SessionsHandler{state: st}
}

// SessionsResponse is the session listing response body.
type SessionsResponse struct {
	Sessions []state.SessionInfo `json:"sessions"`
	Count    int                 `json:"count"`
}

// List handles GET /api/sessions.
func (h *SessionsHandler) List(w http.ResponseWriter, r *http.Request) {
	sessions := h.state.Sessions()

	WriteJSONOK(w, SessionsResponse{
		Sessions: sessions,
		Count:    len(sessions),
	})
}
