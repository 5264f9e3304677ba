package config

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_InvalidLogLevel(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Logging.Level = "VERBOSE"

	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "logging.level")
}

func TestValidate_InvalidLogFormat(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Logging.Format = "xml"

	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "logging.format")
}

func TestValidate_PortOutOfRange(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Server.Port = 70000

	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.port")
}

func TestValidate_InvalidBackendURL(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Backend.URL = "not a url"

	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "backend.url")
}

func TestValidate_ZeroMaxConcurrent(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Transfers.MaxConcurrent = 0

	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "transfers.max_concurrent")
}

func TestValidate_ShortTokenSecret(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Auth.TokenSecret = base64.StdEncoding.EncodeToString([]byte("short"))

	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least 32 bytes")
}

func TestValidate_MalformedTokenSecret(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Auth.TokenSecret = "%%%not-base64%%%"

	require.Error(t, Validate(cfg))
}

func TestValidate_BackendTokenAndUsernameConflict(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Backend.Token = "abc"
	cfg.Backend.Username = "admin"

	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mutually exclusive")
}
