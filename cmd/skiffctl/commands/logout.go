package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/skiffworks/skiff/internal/cli/credentials"
	"github.com/skiffworks/skiff/internal/cli/prompt"
)

var logoutForce bool

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Clear stored credentials",
	Long: `Clear stored credentials for the current context.

This removes the access and refresh tokens but keeps the server URL
and context configuration for easy re-login.

Examples:
  # Logout from current context
  skiffctl logout

  # Logout without the confirmation prompt
  skiffctl logout --force`,
	RunE: runLogout,
}

func init() {
	logoutCmd.Flags().BoolVarP(&logoutForce, "force", "f", false, "Skip the confirmation prompt")
}

func runLogout(cmd *cobra.Command, args []string) error {
	store, err := credentials.NewStore()
	if err != nil {
		return fmt.Errorf("failed to initialize credential store: %w", err)
	}

	contextName := store.CurrentContextName()
	if contextName == "" {
		return fmt.Errorf("not logged in - no current context")
	}

	confirmed, err := prompt.ConfirmWithForce(
		fmt.Sprintf("Clear credentials for context '%s'?", contextName), logoutForce)
	if err != nil {
		return err
	}
	if !confirmed {
		fmt.Println("Logout cancelled")
		return nil
	}

	if err := store.ClearCurrentContext(); err != nil {
		return fmt.Errorf("failed to clear credentials: %w", err)
	}

	fmt.Printf("Logged out from context: %s\n", contextName)
	return nil
}
