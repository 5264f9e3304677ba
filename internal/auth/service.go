package auth

import (
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SecretLength is the number of random bytes in a generated signing secret.
const SecretLength = 32

var (
	// ErrInvalidToken is returned when a token fails validation.
	ErrInvalidToken = errors.New("invalid token")

	// ErrExpiredToken is returned when a token has expired.
	ErrExpiredToken = errors.New("token has expired")

	// ErrInvalidTokenType is returned when a token of the wrong kind is
	// presented, for example a refresh token on an API route.
	ErrInvalidTokenType = errors.New("invalid token type")

	// ErrTokenSigningFailed is returned when token signing fails.
	ErrTokenSigningFailed = errors.New("token signing failed")

	// ErrSecretTooShort is returned when the signing secret is shorter than
	// SecretLength bytes.
	ErrSecretTooShort = fmt.Errorf("token secret must be at least %d bytes", SecretLength)
)

// Config carries the signing secret and token lifetimes for a Service.
type Config struct {
	// Secret is the HMAC-SHA256 signing key. Must be at least SecretLength
	// bytes of high-entropy material.
	Secret []byte

	// Issuer is stamped into every token. Defaults to "skiffd".
	Issuer string

	// AccessTokenTTL bounds the lifetime of access tokens. Defaults to 15m.
	AccessTokenTTL time.Duration

	// RefreshTokenTTL bounds the lifetime of refresh tokens. Defaults to 7d.
	RefreshTokenTTL time.Duration
}

// TokenPair is an access/refresh token pair as handed to clients. ExpiresIn
// is the access token lifetime in seconds.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// Service issues and verifies HMAC-SHA256 signed tokens. It keeps no state
// beyond the signing secret, so verification never touches storage.
type Service struct {
	secret          []byte
	issuer          string
	accessTokenTTL  time.Duration
	refreshTokenTTL time.Duration
}

// NewService creates a token service from cfg. The secret is required and
// must be at least SecretLength bytes; everything else is defaulted.
func NewService(cfg Config) (*Service, error) {
	if len(cfg.Secret) < SecretLength {
		return nil, ErrSecretTooShort
	}

	issuer := cfg.Issuer
	if issuer == "" {
		issuer = "skiffd"
	}

	accessTTL := cfg.AccessTokenTTL
	if accessTTL <= 0 {
		accessTTL = 15 * time.Minute
	}

	refreshTTL := cfg.RefreshTokenTTL
	if refreshTTL <= 0 {
		refreshTTL = 7 * 24 * time.Hour
	}

	return &Service{
		secret:          cfg.Secret,
		issuer:          issuer,
		accessTokenTTL:  accessTTL,
		refreshTokenTTL: refreshTTL,
	}, nil
}

// Issue mints a fresh token pair for the given username. deviceID may be
// empty; when set it is carried in both tokens and survives refreshes.
func (s *Service) Issue(username, deviceID string) (*TokenPair, error) {
	accessToken, err := s.signToken(username, deviceID, TokenTypeAccess, s.accessTokenTTL)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.signToken(username, deviceID, TokenTypeRefresh, s.refreshTokenTTL)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.accessTokenTTL.Seconds()),
	}, nil
}

// Refresh validates a refresh token and mints a new pair carrying the same
// subject and device identifier. The old pair is not revoked; tokens are
// stateless and age out on their own.
func (s *Service) Refresh(refreshToken string) (*TokenPair, error) {
	claims, err := s.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, err
	}

	return s.Issue(claims.Subject, claims.DeviceID)
}

// VerifyAccess validates an access token and returns its claims.
func (s *Service) VerifyAccess(raw string) (*Claims, error) {
	claims, err := s.verify(raw)
	if err != nil {
		return nil, err
	}

	if !claims.IsAccessToken() {
		return nil, fmt.Errorf("%w: expected %s, got %s", ErrInvalidTokenType, TokenTypeAccess, claims.TokenType)
	}

	return claims, nil
}

// VerifyRefresh validates a refresh token and returns its claims.
func (s *Service) VerifyRefresh(raw string) (*Claims, error) {
	claims, err := s.verify(raw)
	if err != nil {
		return nil, err
	}

	if !claims.IsRefreshToken() {
		return nil, fmt.Errorf("%w: expected %s, got %s", ErrInvalidTokenType, TokenTypeRefresh, claims.TokenType)
	}

	return claims, nil
}

// AccessTokenTTL returns the configured access token lifetime.
func (s *Service) AccessTokenTTL() time.Duration {
	return s.accessTokenTTL
}

func (s *Service) signToken(username, deviceID string, kind TokenType, ttl time.Duration) (string, error) {
	now := time.Now()

	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		TokenType: kind,
		DeviceID:  deviceID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTokenSigningFailed, err)
	}

	return signed, nil
}

func (s *Service) verify(raw string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// GenerateSecret returns SecretLength bytes of cryptographically random key
// material suitable for Config.Secret.
func GenerateSecret() ([]byte, error) {
	secret := make([]byte, SecretLength)
	if _, err := rand.Read(secret); err != nil {
		return nil, fmt.Errorf("generate token secret: %w", err)
	}
	return secret, nil
}
