// Package auth implements the token authority: stateless HMAC-signed access
// and refresh tokens, plus the pluggable credential verifier used at login.
package auth

import (
	"github.com/golang-jwt/jwt/v5"
)

// TokenType indicates whether a token is an access token or refresh token.
type TokenType string

const (
	// TokenTypeAccess is a short-lived token used for API authorization.
	TokenTypeAccess TokenType = "access"
	// TokenTypeRefresh is a long-lived token used only to mint new pairs.
	TokenTypeRefresh TokenType = "refresh"
)

// Claims is the token payload. Subject carries the username; DeviceID is an
// optional opaque client identifier preserved across refreshes.
type Claims struct {
	jwt.RegisteredClaims

	// TokenType indicates whether this is an access or refresh token.
	TokenType TokenType `json:"token_type"`

	// DeviceID is an opaque per-device identifier, omitted when unset.
	DeviceID string `json:"device_id,omitempty"`
}

// IsAccessToken returns true if this is an access token.
func (c *Claims) IsAccessToken() bool {
	return c.TokenType == TokenTypeAccess
}

// IsRefreshToken returns true if this is a refresh token.
func (c *Claims) IsRefreshToken() bool {
	return c.TokenType == TokenTypeRefresh
}

// Username returns the token subject.
func (c *Claims) Username() string {
	return c.Subject
}
