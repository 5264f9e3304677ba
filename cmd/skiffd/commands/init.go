package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/skiffworks/skiff/pkg/config"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a sample configuration file",
	Long: `Initialize a sample skiffd configuration file.

By default, the configuration file is created at $XDG_CONFIG_HOME/skiff/config.toml.
Use --config to specify a custom path.

Examples:
  # Initialize with default location
  skiffd init

  # Initialize with custom path
  skiffd init --config /etc/skiff/config.toml

  # Force overwrite existing config
  skiffd init --force`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Force overwrite existing config file")
}

func runInit(cmd *cobra.Command, args []string) error {
	configFile := GetConfigFile()

	var configPath string
	var err error

	if configFile != "" {
		err = config.InitConfigToPath(configFile, initForce)
		configPath = configFile
	} else {
		configPath, err = config.InitConfig(initForce)
	}

	if err != nil {
		return fmt.Errorf("failed to initialize config: %w", err)
	}

	fmt.Printf("Configuration file created at: %s\n", configPath)
	fmt.Println("\nNext steps:")
	fmt.Println("  1. Edit the configuration file to point at your file-manager backend")
	fmt.Println("  2. Start the daemon with: skiffd start")
	fmt.Printf("  3. Or specify custom config: skiffd start --config %s\n", configPath)
	fmt.Println("\nSecurity note:")
	fmt.Println("  A random token secret has been generated for development use.")
	fmt.Println("  For production, generate a secure secret and use an environment variable:")
	fmt.Println("    # Generates 32 bytes of entropy, base64-encoded")
	fmt.Println("    export SKIFF_AUTH_TOKEN_SECRET=$(openssl rand -base64 32)")

	return nil
}
