package config

import (
	"encoding/base64"
	"fmt"
	"os"

	"github.com/skiffworks/skiff/internal/auth"
)

// InitConfig writes a starter configuration file at the default location.
// Returns the path it wrote. Fails if the file exists unless force is set.
func InitConfig(force bool) (string, error) {
	path := GetDefaultConfigPath()
	if err := InitConfigToPath(path, force); err != nil {
		return "", err
	}
	return path, nil
}

// InitConfigToPath writes a starter configuration file at path. The starter
// config carries every default plus a freshly generated token secret, so
// tokens survive daemon restarts out of the box.
func InitConfigToPath(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("config file already exists: %s (use --force to overwrite)", path)
	}

	cfg := GetDefaultConfig()

	secret, err := auth.GenerateSecret()
	if err != nil {
		return fmt.Errorf("failed to generate token secret: %w", err)
	}
	cfg.Auth.TokenSecret = base64.StdEncoding.EncodeToString(secret)

	if err := SaveConfig(cfg, path); err != nil {
		return err
	}

	return nil
}
