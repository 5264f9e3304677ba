package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitConfig_CreatesFileWithSecret(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	path, err := InitConfig(false)
	require.NoError(t, err)
	assert.Equal(t, GetDefaultConfigPath(), path)

	cfg, err := Load(path)
	require.NoError(t, err)

	secret, err := cfg.Auth.SecretBytes()
	require.NoError(t, err)
	assert.Len(t, secret, 32, "starter config carries a generated secret")
}

func TestInitConfig_RefusesOverwrite(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	_, err := InitConfig(false)
	require.NoError(t, err)

	_, err = InitConfig(false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestInitConfig_ForceOverwrites(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	first, err := InitConfig(false)
	require.NoError(t, err)
	firstData, err := os.ReadFile(first)
	require.NoError(t, err)

	second, err := InitConfig(true)
	require.NoError(t, err)
	secondData, err := os.ReadFile(second)
	require.NoError(t, err)

	// A fresh secret is generated on every init.
	assert.NotEqual(t, string(firstData), string(secondData))
}

func TestInitConfigToPath_CustomLocation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "etc", "skiff.toml")

	require.NoError(t, InitConfigToPath(path, false))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9280, cfg.Server.Port)
}
