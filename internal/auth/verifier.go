package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost is the bcrypt cost used when hashing passwords.
const DefaultBcryptCost = 10

// MinPasswordLength is the minimum accepted password length.
const MinPasswordLength = 8

// MaxPasswordLength is the maximum accepted password length. bcrypt silently
// truncates input at 72 bytes, so longer passwords are rejected outright.
const MaxPasswordLength = 72

// ErrPasswordTooShort is returned when a password is shorter than MinPasswordLength.
var ErrPasswordTooShort = errors.New("password must be at least 8 characters")

// ErrPasswordTooLong is returned when a password is longer than MaxPasswordLength.
var ErrPasswordTooLong = errors.New("password must be at most 72 characters")

// CredentialVerifier decides whether a username/password pair may log in.
// Implementations must be safe for concurrent use.
type CredentialVerifier interface {
	Verify(username, password string) bool
}

// AllowNonEmpty accepts any login with a non-empty username and password.
// It is the development default when no user table is configured.
type AllowNonEmpty struct{}

// Verify implements CredentialVerifier.
func (AllowNonEmpty) Verify(username, password string) bool {
	return username != "" && password != ""
}

// VerifierForUsers selects the verifier for a configured user table. An
// empty table yields AllowNonEmpty.
func VerifierForUsers(users map[string]string) CredentialVerifier {
	if len(users) == 0 {
		return AllowNonEmpty{}
	}
	return NewStaticVerifier(users)
}

// StaticVerifier checks credentials against a fixed map of usernames to
// bcrypt password hashes, as loaded from configuration.
type StaticVerifier struct {
	hashes map[string]string
}

// NewStaticVerifier builds a StaticVerifier from a username to bcrypt-hash map.
func NewStaticVerifier(hashes map[string]string) *StaticVerifier {
	out := make(map[string]string, len(hashes))
	for username, hash := range hashes {
		out[username] = hash
	}
	return &StaticVerifier{hashes: out}
}

// Verify implements CredentialVerifier.
func (v *StaticVerifier) Verify(username, password string) bool {
	hash, ok := v.hashes[username]
	if !ok {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// HashPassword creates a bcrypt hash of the given password.
func HashPassword(password string) (string, error) {
	if err := ValidatePassword(password); err != nil {
		return "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), DefaultBcryptCost)
	if err != nil {
		return "", err
	}

	return string(hash), nil
}

// ValidatePassword checks that a password length is within accepted bounds.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	if len(password) > MaxPasswordLength {
		return ErrPasswordTooLong
	}
	return nil
}
