// Package config loads, validates, and persists the skiffd configuration.
//
// Configuration lives in a TOML file at $XDG_CONFIG_HOME/skiff/config.toml
// and every key can be overridden through the environment with the SKIFF_
// prefix (SKIFF_LOGGING_LEVEL=DEBUG, SKIFF_SERVER_PORT=9281, ...).
package config

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

// Config is the full skiffd configuration.
type Config struct {
	// Logging configures the structured logger.
	Logging LoggingConfig `mapstructure:"logging" toml:"logging" yaml:"logging"`

	// Server configures the HTTP/WebSocket listener.
	Server ServerConfig `mapstructure:"server" toml:"server" yaml:"server"`

	// Backend configures the file-manager REST backend.
	Backend BackendConfig `mapstructure:"backend" toml:"backend" yaml:"backend"`

	// Auth configures token issuing and lifetimes.
	Auth AuthConfig `mapstructure:"auth" toml:"auth" yaml:"auth"`

	// Transfers configures transfer admission control.
	Transfers TransfersConfig `mapstructure:"transfers" toml:"transfers" yaml:"transfers"`

	// Load configures the load probe.
	Load LoadConfig `mapstructure:"load" toml:"load" yaml:"load"`

	// Metrics configures Prometheus metrics collection.
	Metrics MetricsConfig `mapstructure:"metrics" toml:"metrics" yaml:"metrics"`

	// Telemetry configures opt-in tracing and profiling.
	Telemetry TelemetryConfig `mapstructure:"telemetry" toml:"telemetry" yaml:"telemetry"`
}

// LoggingConfig controls log level, format, and destination.
type LoggingConfig struct {
	// Level is the minimum level to emit: DEBUG, INFO, WARN, or ERROR.
	// Default: INFO
	Level string `mapstructure:"level" toml:"level" yaml:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error"`

	// Format selects the handler: "text" or "json".
	// Default: text
	Format string `mapstructure:"format" toml:"format" yaml:"format" validate:"required,oneof=text json"`

	// Output is "stdout", "stderr", or a file path.
	// Default: stdout
	Output string `mapstructure:"output" toml:"output" yaml:"output" validate:"required"`
}

// ServerConfig controls the HTTP listener carrying the REST API and the
// WebSocket endpoint.
type ServerConfig struct {
	// ListenAddr is the bind address.
	// Default: 0.0.0.0
	ListenAddr string `mapstructure:"listen_addr" toml:"listen_addr" yaml:"listen_addr" validate:"required"`

	// Port is the TCP port.
	// Default: 9280
	Port int `mapstructure:"port" toml:"port" yaml:"port" validate:"required,min=1,max=65535"`

	// ReadTimeout bounds reading a single request.
	// Default: 10s
	ReadTimeout time.Duration `mapstructure:"read_timeout" toml:"read_timeout" yaml:"read_timeout"`

	// WriteTimeout bounds writing a single response.
	// Default: 10s
	WriteTimeout time.Duration `mapstructure:"write_timeout" toml:"write_timeout" yaml:"write_timeout"`

	// IdleTimeout bounds keep-alive idle time.
	// Default: 60s
	IdleTimeout time.Duration `mapstructure:"idle_timeout" toml:"idle_timeout" yaml:"idle_timeout"`
}

// BackendConfig points skiffd at the file-manager REST API it proxies.
type BackendConfig struct {
	// URL is the backend base URL.
	// Default: http://127.0.0.1:8080
	URL string `mapstructure:"url" toml:"url" yaml:"url" validate:"required,url"`

	// Token is a pre-issued backend session token. When set, skiffd uses it
	// directly instead of logging in.
	Token string `mapstructure:"token" toml:"token" yaml:"token,omitempty"`

	// Username and Password authenticate skiffd against the backend at
	// startup when Token is empty. Leave all three empty for backends with
	// authentication disabled.
	Username string `mapstructure:"username" toml:"username" yaml:"username,omitempty"`
	Password string `mapstructure:"password" toml:"password" yaml:"password,omitempty"`

	// Timeout bounds each backend request.
	// Default: 30s
	Timeout time.Duration `mapstructure:"timeout" toml:"timeout" yaml:"timeout"`
}

// AuthConfig controls token signing and lifetimes.
type AuthConfig struct {
	// TokenSecret is the base64-encoded HMAC signing secret (32+ bytes
	// decoded). When empty, skiffd generates an ephemeral secret at startup;
	// tokens then stop verifying across restarts.
	TokenSecret string `mapstructure:"token_secret" toml:"token_secret" yaml:"token_secret,omitempty"`

	// AccessTokenTTL is the access token lifetime.
	// Default: 15m
	AccessTokenTTL time.Duration `mapstructure:"access_token_ttl" toml:"access_token_ttl" yaml:"access_token_ttl" validate:"gt=0"`

	// RefreshTokenTTL is the refresh token lifetime.
	// Default: 168h (7 days)
	RefreshTokenTTL time.Duration `mapstructure:"refresh_token_ttl" toml:"refresh_token_ttl" yaml:"refresh_token_ttl" validate:"gt=0"`

	// Users maps usernames to bcrypt password hashes. When the table is
	// non-empty, logins are checked against it; when empty, any non-empty
	// username/password pair is accepted (development mode).
	Users map[string]string `mapstructure:"users" toml:"users" yaml:"users,omitempty"`
}

// SecretBytes decodes the configured token secret. Returns nil when no
// secret is configured.
func (c *AuthConfig) SecretBytes() ([]byte, error) {
	if c.TokenSecret == "" {
		return nil, nil
	}
	secret, err := base64.StdEncoding.DecodeString(c.TokenSecret)
	if err != nil {
		return nil, fmt.Errorf("auth.token_secret is not valid base64: %w", err)
	}
	return secret, nil
}

// TransfersConfig bounds concurrent uploads and downloads.
type TransfersConfig struct {
	// MaxConcurrent is the transfer admission limit.
	// Default: 3
	MaxConcurrent int `mapstructure:"max_concurrent" toml:"max_concurrent" yaml:"max_concurrent" validate:"min=1"`
}

// LoadConfig controls the load probe.
type LoadConfig struct {
	// ProbeInterval is the sampling period.
	// Default: 5s
	ProbeInterval time.Duration `mapstructure:"probe_interval" toml:"probe_interval" yaml:"probe_interval" validate:"gt=0"`
}

// MetricsConfig controls Prometheus metrics exposure on /metrics.
type MetricsConfig struct {
	// Enabled turns metrics collection on.
	// Default: false
	Enabled bool `mapstructure:"enabled" toml:"enabled" yaml:"enabled"`
}

// TelemetryConfig controls opt-in OpenTelemetry tracing and Pyroscope
// profiling.
type TelemetryConfig struct {
	// Enabled turns OTLP trace export on.
	// Default: false
	Enabled bool `mapstructure:"enabled" toml:"enabled" yaml:"enabled"`

	// Endpoint is the OTLP gRPC endpoint.
	// Default: localhost:4317
	Endpoint string `mapstructure:"endpoint" toml:"endpoint" yaml:"endpoint"`

	// Insecure disables TLS on the OTLP connection.
	Insecure bool `mapstructure:"insecure" toml:"insecure" yaml:"insecure"`

	// SampleRate is the trace sampling ratio in [0, 1].
	// Default: 1.0
	SampleRate float64 `mapstructure:"sample_rate" toml:"sample_rate" yaml:"sample_rate" validate:"omitempty,gte=0,lte=1"`

	// Profiling configures Pyroscope continuous profiling.
	Profiling ProfilingConfig `mapstructure:"profiling" toml:"profiling" yaml:"profiling"`
}

// ProfilingConfig controls Pyroscope continuous profiling.
type ProfilingConfig struct {
	// Enabled turns profiling on.
	// Default: false
	Enabled bool `mapstructure:"enabled" toml:"enabled" yaml:"enabled"`

	// Endpoint is the Pyroscope server URL.
	// Default: http://localhost:4040
	Endpoint string `mapstructure:"endpoint" toml:"endpoint" yaml:"endpoint"`

	// ProfileTypes selects the profiles to collect.
	ProfileTypes []string `mapstructure:"profile_types" toml:"profile_types" yaml:"profile_types,omitempty"`
}

// Load reads configuration from file, environment, and defaults.
//
// Precedence (highest to lowest): environment variables (SKIFF_*), the
// configuration file, built-in defaults. A missing config file is not an
// error; defaults apply.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setupViper(v, configPath)

	if _, err := readConfigFile(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(durationDecodeHook())); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// MustLoad loads configuration, with actionable error text when the file is
// missing. Commands that need a config call this.
func MustLoad(configPath string) (*Config, error) {
	if configPath == "" {
		if !DefaultConfigExists() {
			return nil, fmt.Errorf("no configuration file found at default location: %s\n\n"+
				"Please initialize a configuration file first:\n"+
				"  skiffd init\n\n"+
				"Or specify a custom config file:\n"+
				"  skiffd <command> --config /path/to/config.toml",
				GetDefaultConfigPath())
		}
		configPath = GetDefaultConfigPath()
	} else {
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("configuration file not found: %s\n\n"+
				"Please create the configuration file:\n"+
				"  skiffd init --config %s",
				configPath, configPath)
		}
	}

	cfg, err := Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	return cfg, nil
}

// SaveConfig writes cfg to path as TOML. The file is written 0600 because it
// may carry the token secret and backend credentials.
func SaveConfig(cfg *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// setupViper wires environment overrides and the config file location.
func setupViper(v *viper.Viper, configPath string) {
	v.SetEnvPrefix("SKIFF")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Registering every key makes viper consider it during Unmarshal, so
	// environment overrides apply even for keys absent from the file.
	registerDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(getConfigDir())
		v.SetConfigName("config")
		v.SetConfigType("toml")
	}
}

// registerDefaults seeds viper with the built-in defaults for every config
// key. Durations are registered as strings so the decode hook parses them
// uniformly.
func registerDefaults(v *viper.Viper) {
	def := GetDefaultConfig()

	v.SetDefault("logging.level", def.Logging.Level)
	v.SetDefault("logging.format", def.Logging.Format)
	v.SetDefault("logging.output", def.Logging.Output)

	v.SetDefault("server.listen_addr", def.Server.ListenAddr)
	v.SetDefault("server.port", def.Server.Port)
	v.SetDefault("server.read_timeout", def.Server.ReadTimeout.String())
	v.SetDefault("server.write_timeout", def.Server.WriteTimeout.String())
	v.SetDefault("server.idle_timeout", def.Server.IdleTimeout.String())

	v.SetDefault("backend.url", def.Backend.URL)
	v.SetDefault("backend.token", def.Backend.Token)
	v.SetDefault("backend.username", def.Backend.Username)
	v.SetDefault("backend.password", def.Backend.Password)
	v.SetDefault("backend.timeout", def.Backend.Timeout.String())

	v.SetDefault("auth.token_secret", def.Auth.TokenSecret)
	v.SetDefault("auth.access_token_ttl", def.Auth.AccessTokenTTL.String())
	v.SetDefault("auth.refresh_token_ttl", def.Auth.RefreshTokenTTL.String())

	v.SetDefault("transfers.max_concurrent", def.Transfers.MaxConcurrent)

	v.SetDefault("load.probe_interval", def.Load.ProbeInterval.String())

	v.SetDefault("metrics.enabled", def.Metrics.Enabled)

	v.SetDefault("telemetry.enabled", def.Telemetry.Enabled)
	v.SetDefault("telemetry.endpoint", def.Telemetry.Endpoint)
	v.SetDefault("telemetry.insecure", def.Telemetry.Insecure)
	v.SetDefault("telemetry.sample_rate", def.Telemetry.SampleRate)
	v.SetDefault("telemetry.profiling.enabled", def.Telemetry.Profiling.Enabled)
	v.SetDefault("telemetry.profiling.endpoint", def.Telemetry.Profiling.Endpoint)
	v.SetDefault("telemetry.profiling.profile_types", def.Telemetry.Profiling.ProfileTypes)
}

// readConfigFile reads the configuration file if present. Returns whether a
// file was found.
func readConfigFile(v *viper.Viper) (bool, error) {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return false, nil
		}
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read config file: %w", err)
	}
	return true, nil
}

// durationDecodeHook converts config values to time.Duration. Strings parse
// as Go durations ("30s", "5m"); raw numbers are taken as seconds, matching
// the documented access_token_ttl/probe_interval units.
func durationDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(time.Duration(0)) {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			return time.ParseDuration(v)
		case int:
			return time.Duration(v) * time.Second, nil
		case int64:
			return time.Duration(v) * time.Second, nil
		case float64:
			return time.Duration(v * float64(time.Second)), nil
		default:
			return data, nil
		}
	}
}

// getConfigDir returns the configuration directory, preferring
// XDG_CONFIG_HOME and falling back to ~/.config.
func getConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "skiff")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}

	return filepath.Join(home, ".config", "skiff")
}

// GetConfigDir returns the configuration directory path.
func GetConfigDir() string {
	return getConfigDir()
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() string {
	return filepath.Join(getConfigDir(), "config.toml")
}

// DefaultConfigExists reports whether a config file exists at the default
// location.
func DefaultConfigExists() bool {
	_, err := os.Stat(GetDefaultConfigPath())
	return err == nil
}
