package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestApplyDefaults_FillsZeroValues(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	assert.Equal(t, "INFO", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, "stdout", cfg.Logging.Output)

	assert.Equal(t, "0.0.0.0", cfg.Server.ListenAddr)
	assert.Equal(t, 9280, cfg.Server.Port)
	assert.Equal(t, 10*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 60*time.Second, cfg.Server.IdleTimeout)

	assert.Equal(t, "http://127.0.0.1:8080", cfg.Backend.URL)
	assert.Equal(t, 30*time.Second, cfg.Backend.Timeout)

	assert.Empty(t, cfg.Auth.TokenSecret)
	assert.Equal(t, 15*time.Minute, cfg.Auth.AccessTokenTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.RefreshTokenTTL)

	assert.Equal(t, 3, cfg.Transfers.MaxConcurrent)
	assert.Equal(t, 5*time.Second, cfg.Load.ProbeInterval)

	assert.False(t, cfg.Metrics.Enabled)
	assert.False(t, cfg.Telemetry.Enabled)
	assert.Equal(t, "localhost:4317", cfg.Telemetry.Endpoint)
	assert.Equal(t, 1.0, cfg.Telemetry.SampleRate)
	assert.Equal(t, "http://localhost:4040", cfg.Telemetry.Profiling.Endpoint)
	assert.NotEmpty(t, cfg.Telemetry.Profiling.ProfileTypes)
}

func TestApplyDefaults_PreservesExplicitValues(t *testing.T) {
	cfg := &Config{}
	cfg.Server.Port = 12345
	cfg.Logging.Level = "debug"
	cfg.Transfers.MaxConcurrent = 8

	ApplyDefaults(cfg)

	assert.Equal(t, 12345, cfg.Server.Port)
	assert.Equal(t, "DEBUG", cfg.Logging.Level, "level is normalized to uppercase")
	assert.Equal(t, 8, cfg.Transfers.MaxConcurrent)
}

func TestGetDefaultConfig_Validates(t *testing.T) {
	assert.NoError(t, Validate(GetDefaultConfig()))
}
