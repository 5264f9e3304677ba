package config

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/skiffworks/skiff/internal/auth"
	"github.com/skiffworks/skiff/internal/cli/prompt"
)

var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password",
	Short: "Hash a password for the auth.users table",
	Long: `Generate a bcrypt hash for the [auth.users] table.

The password is read interactively so it stays out of shell history.
Paste the printed hash into config.toml:

  [auth.users]
  alice = "<hash>"

Examples:
  skiffd config hash-password`,
	RunE: runHashPassword,
}

func runHashPassword(cmd *cobra.Command, args []string) error {
	password, err := prompt.Password("Password")
	if err != nil {
		return err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	fmt.Println(hash)
	return nil
}
