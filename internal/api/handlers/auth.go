package handlers

import (
	"errors"
	"net/http"

	"github.com/skiffworks/skiff/internal/auth"
	"github.com/skiffworks/skiff/internal/logger"
)

// AuthHandler serves login and token refresh.
type AuthHandler struct {
	tokens   *auth.Service
	verifier auth.CredentialVerifier
}

// NewAuthHandler creates an auth handler.
func NewAuthHandler(tokens *auth.Service, verifier auth.CredentialVerifier) *AuthHandler {
	return &AuthHandler{tokens: tokens, verifier: verifier}
}

// LoginRequest is the login request body.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RefreshRequest is the token refresh request body.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Login handles POST /api/login. Bad credentials and empty credentials get
// the same 401 so the response does not leak which part was wrong.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	if !h.verifier.Verify(req.Username, req.Password) {
		logger.WarnCtx(r.Context(), "Login failed",
			logger.Username(req.Username),
			logger.ClientIP(r.RemoteAddr))
		Unauthorized(w, "Invalid username or password")
		return
	}

	pair, err := h.tokens.Issue(req.Username, "")
	if err != nil {
		logger.ErrorCtx(r.Context(), "Token issue failed", logger.Err(err))
		InternalServerError(w, "Failed to issue tokens")
		return
	}

	logger.InfoCtx(r.Context(), "Login succeeded",
		logger.Username(req.Username),
		logger.ClientIP(r.RemoteAddr))
	WriteJSONOK(w, pair)
}

// Refresh handles POST /api/refresh.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	if req.RefreshToken == "" {
		BadRequest(w, "Refresh token is required")
		return
	}

	pair, err := h.tokens.Refresh(req.RefreshToken)
	if err != nil {
		if errors.Is(err, auth.ErrExpiredToken) {
			Unauthorized(w, "Refresh token has expired")
			return
		}
		Unauthorized(w, "Invalid refresh token")
		return
	}

	WriteJSONOK(w, pair)
}
