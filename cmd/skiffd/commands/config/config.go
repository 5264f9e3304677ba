// Package config implements configuration management subcommands.
package config

import (
	"github.com/spf13/cobra"
)

// Cmd is the config subcommand.
var Cmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management",
	Long: `Manage skiffd configuration files.

Use 'skiffd init' to create a new configuration file.

Subcommands:
  edit           Open configuration in editor
  validate       Validate configuration file
  show           Display current configuration
  schema         Generate JSON schema for IDE/validation
  hash-password  Hash a password for the auth.users table`,
}

func init() {
	Cmd.AddCommand(editCmd)
	Cmd.AddCommand(validateCmd)
	Cmd.AddCommand(showCmd)
	Cmd.AddCommand(schemaCmd)
	Cmd.AddCommand(hashPasswordCmd)
}
