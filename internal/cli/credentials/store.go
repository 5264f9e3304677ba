// Package credentials stores skiffctl login contexts under the XDG config
// directory. A context pairs a server URL with the token pair obtained from
// its login endpoint; skiffctl keeps one context per daemon it talks to.
package credentials

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	// ConfigDirName is the directory under XDG_CONFIG_HOME holding the
	// skiffctl state.
	ConfigDirName = "skiffctl"

	// ConfigFileName is the credentials file name.
	ConfigFileName = "config.json"

	filePermissions = 0600
	dirPermissions  = 0700
)

var (
	// ErrNoCurrentContext indicates no context is currently selected.
	ErrNoCurrentContext = errors.New("no current context set")

	// ErrContextNotFound indicates the named context does not exist.
	ErrContextNotFound = errors.New("context not found")

	// ErrNotLoggedIn indicates no usable credentials exist.
	ErrNotLoggedIn = errors.New("not logged in - run 'skiffctl login' first")
)

// Context is one saved connection to a skiffd daemon.
type Context struct {
	ServerURL    string    `json:"server_url"`
	Username     string    `json:"username,omitempty"`
	AccessToken  string    `json:"access_token,omitempty"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	ExpiresAt    time.Time `json:"expires_at,omitempty"`
}

// IsExpired reports whether the access token needs refreshing. Tokens within
// a minute of expiry count as expired so in-flight requests do not race the
// deadline.
func (c *Context) IsExpired() bool {
	if c.ExpiresAt.IsZero() {
		return true
	}
	return time.Now().Add(time.Minute).After(c.ExpiresAt)
}

// HasRefreshToken reports whether a refresh token is available.
func (c *Context) HasRefreshToken() bool {
	return c.RefreshToken != ""
}

// fileFormat is the on-disk layout of the credentials file.
type fileFormat struct {
	CurrentContext string              `json:"current_context"`
	Contexts       map[string]*Context `json:"contexts"`
}

// Store reads and writes the skiffctl credentials file.
type Store struct {
	configPath string
	config     *fileFormat
}

// NewStore opens the credentials store, creating an empty one in memory when
// no file exists yet.
func NewStore() (*Store, error) {
	configPath, err := getConfigPath()
	if err != nil {
		return nil, err
	}

	store := &Store{configPath: configPath}

	if err := store.load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
		store.config = &fileFormat{Contexts: make(map[string]*Context)}
	}

	return store, nil
}

func getConfigPath() (string, error) {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		configHome = filepath.Join(home, ".config")
	}

	return filepath.Join(configHome, ConfigDirName, ConfigFileName), nil
}

func (s *Store) load() error {
	data, err := os.ReadFile(s.configPath)
	if err != nil {
		return err
	}

	s.config = &fileFormat{}
	return json.Unmarshal(data, s.config)
}

func (s *Store) save() error {
	dir := filepath.Dir(s.configPath)
	if err := os.MkdirAll(dir, dirPermissions); err != nil {
		return fmt.Errorf("cannot create config directory: %w", err)
	}

	data, err := json.MarshalIndent(s.config, "", "  ")
	if err != nil {
		return err
	}

	// Tokens live in this file, hence the tight permissions.
	return os.WriteFile(s.configPath, data, filePermissions)
}

// CurrentContext returns the selected context.
func (s *Store) CurrentContext() (*Context, error) {
	if s.config.CurrentContext == "" {
		return nil, ErrNoCurrentContext
	}

	ctx, ok := s.config.Contexts[s.config.CurrentContext]
	if !ok {
		return nil, ErrContextNotFound
	}

	return ctx, nil
}

// CurrentContextName returns the selected context's name, or "".
func (s *Store) CurrentContextName() string {
	return s.config.CurrentContext
}

// GetContext returns the named context.
func (s *Store) GetContext(name string) (*Context, error) {
	ctx, ok := s.config.Contexts[name]
	if !ok {
		return nil, ErrContextNotFound
	}
	return ctx, nil
}

// ListContexts returns every saved context name.
func (s *Store) ListContexts() []string {
	names := make([]string, 0, len(s.config.Contexts))
	for name := range s.config.Contexts {
		names = append(names, name)
	}
	return names
}

// SetContext creates or replaces a context and selects it when nothing else
// is selected.
func (s *Store) SetContext(name string, ctx *Context) error {
	if s.config.Contexts == nil {
		s.config.Contexts = make(map[string]*Context)
	}
	s.config.Contexts[name] = ctx

	if s.config.CurrentContext == "" {
		s.config.CurrentContext = name
	}

	return s.save()
}

// UseContext selects a different context.
func (s *Store) UseContext(name string) error {
	if _, ok := s.config.Contexts[name]; !ok {
		return ErrContextNotFound
	}
	s.config.CurrentContext = name
	return s.save()
}

// DeleteContext removes a context, clearing the selection when it was the
// selected one.
func (s *Store) DeleteContext(name string) error {
	if _, ok := s.config.Contexts[name]; !ok {
		return ErrContextNotFound
	}

	delete(s.config.Contexts, name)

	if s.config.CurrentContext == name {
		s.config.CurrentContext = ""
	}

	return s.save()
}

// UpdateTokens stores a fresh token pair on the current context.
func (s *Store) UpdateTokens(accessToken, refreshToken string, expiresAt time.Time) error {
	ctx, err := s.CurrentContext()
	if err != nil {
		return err
	}

	ctx.AccessToken = accessToken
	ctx.RefreshToken = refreshToken
	ctx.ExpiresAt = expiresAt

	return s.save()
}

// ClearCurrentContext drops the tokens from the current context (logout) but
// keeps the server URL and username for the next login.
func (s *Store) ClearCurrentContext() error {
	ctx, err := s.CurrentContext()
	if err != nil {
		return err
	}

	ctx.AccessToken = ""
	ctx.RefreshToken = ""
	ctx.ExpiresAt = time.Time{}

	return s.save()
}

// ConfigPath returns the credentials file path.
func (s *Store) ConfigPath() string {
	return s.configPath
}

// GenerateContextName derives a context name for a newly added server.
func GenerateContextName(serverURL string) string {
	// Simple approach: use "default" for first context, then derive from URL
	return "default"
}
