package commands

import (
	"fmt"
	"net/url"
	"time"

	"github.com/spf13/cobra"

	"github.com/skiffworks/skiff/cmd/skiffctl/cmdutil"
	"github.com/skiffworks/skiff/internal/cli/credentials"
	"github.com/skiffworks/skiff/internal/cli/prompt"
	"github.com/skiffworks/skiff/pkg/apiclient"
)

var (
	loginServer   string
	loginUsername string
	loginPassword string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authenticate with a skiffd daemon",
	Long: `Authenticate with a skiffd daemon and store credentials.

On first login, you must specify the server URL. Subsequent logins will
use the stored server URL unless overridden.

Examples:
  # First login to a daemon
  skiffctl login --server http://localhost:9280 --username alice

  # Login with password on command line (less secure)
  skiffctl login --server http://localhost:9280 -u alice -p secret

  # Re-login to stored server
  skiffctl login`,
	RunE: runLogin,
}

func init() {
	loginCmd.Flags().StringVar(&loginServer, "server", "", "Server URL (required on first login)")
	loginCmd.Flags().StringVarP(&loginUsername, "username", "u", "", "Username")
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "Password")
}

func runLogin(cmd *cobra.Command, args []string) error {
	store, err := credentials.NewStore()
	if err != nil {
		return fmt.Errorf("failed to initialize credential store: %w", err)
	}

	// Determine server URL
	serverURLStr := loginServer
	if serverURLStr == "" {
		ctx, err := store.CurrentContext()
		if err != nil || ctx.ServerURL == "" {
			return fmt.Errorf("no server URL specified and no saved context found\n\n" +
				"Specify server URL:\n" +
				"  skiffctl login --server http://localhost:9280")
		}
		serverURLStr = ctx.ServerURL
	}

	parsedURL, err := url.Parse(serverURLStr)
	if err != nil {
		return fmt.Errorf("invalid server URL: %w", err)
	}
	if parsedURL.Scheme == "" {
		parsedURL.Scheme = "http"
		serverURLStr = parsedURL.String()
	}

	// Get username (prompt if not provided)
	username := loginUsername
	if username == "" {
		username, err = prompt.InputRequired("Username")
		if err != nil {
			return cmdutil.HandleAbort(err)
		}
	}

	// Get password (prompt if not provided)
	password := loginPassword
	if password == "" {
		password, err = prompt.Password("Password")
		if err != nil {
			return cmdutil.HandleAbort(err)
		}
	}

	client := apiclient.New(serverURLStr)

	fmt.Printf("Logging in to %s as %s...\n", serverURLStr, username)
	tokens, err := client.Login(username, password)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	contextName := store.CurrentContextName()
	if contextName == "" {
		contextName = credentials.GenerateContextName(serverURLStr)
	}

	ctx := &credentials.Context{
		ServerURL:    serverURLStr,
		Username:     username,
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		ExpiresAt:    time.Now().Add(tokens.ExpiresInDuration()),
	}

	if err := store.SetContext(contextName, ctx); err != nil {
		return fmt.Errorf("failed to save credentials: %w", err)
	}

	if err := store.UseContext(contextName); err != nil {
		return fmt.Errorf("failed to set current context: %w", err)
	}

	fmt.Printf("Logged in successfully as %s\n", username)
	fmt.Printf("Context: %s\n", contextName)
	fmt.Printf("Credentials saved to: %s\n", store.ConfigPath())

	return nil
}
