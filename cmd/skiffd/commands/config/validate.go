package config

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/skiffworks/skiff/pkg/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	Long: `Validate the skiffd configuration file.

Checks for syntax errors, missing required fields, and invalid values.

Examples:
  # Validate default config
  skiffd config validate

  # Validate specific config file
  skiffd config validate --config /etc/skiff/config.toml`,
	RunE: runConfigValidate,
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	// Config path comes from the root command's persistent flag
	configPath, _ := cmd.Flags().GetString("config")

	cfg, err := config.MustLoad(configPath)
	if err != nil {
		return err
	}

	displayPath := configPath
	if displayPath == "" {
		displayPath = config.GetDefaultConfigPath()
	}

	var warnings []string

	if cfg.Auth.TokenSecret == "" {
		warnings = append(warnings, "Token secret not configured - an ephemeral one is generated at startup and tokens will not survive restarts")
	}

	if cfg.Backend.Token == "" && cfg.Backend.Username == "" {
		warnings = append(warnings, "No backend credentials configured - backend requests will be unauthenticated")
	}

	fmt.Printf("Configuration file: %s\n", displayPath)
	fmt.Println("Validation: OK")

	if len(warnings) > 0 {
		fmt.Println("\nWarnings:")
		for _, w := range warnings {
			fmt.Printf("  - %s\n", w)
		}
	}

	fmt.Printf("\nConfiguration summary:\n")
	fmt.Printf("  Listen address:  %s:%d\n", cfg.Server.ListenAddr, cfg.Server.Port)
	fmt.Printf("  Backend URL:     %s\n", cfg.Backend.URL)
	fmt.Printf("  Max transfers:   %d\n", cfg.Transfers.MaxConcurrent)
	fmt.Printf("  Log level:       %s\n", cfg.Logging.Level)

	return nil
}
