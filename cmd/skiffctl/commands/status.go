package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/skiffworks/skiff/cmd/skiffctl/cmdutil"
	"github.com/skiffworks/skiff/internal/cli/output"
	"github.com/skiffworks/skiff/pkg/apiclient"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show daemon health and load",
	Long: `Display the health summary of the target skiffd daemon.

The health endpoint needs no authentication, so this works before login
as long as --server is given or a context is stored.

Examples:
  # Check status of the stored server
  skiffctl status

  # Check a specific daemon
  skiffctl status --server http://pibox.local:9280

  # Output as JSON
  skiffctl status -o json`,
	RunE: runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	serverURL, err := cmdutil.GetServerURL()
	if err != nil {
		return err
	}

	client := apiclient.New(serverURL)
	health, err := client.Health()
	if err != nil {
		return fmt.Errorf("daemon unreachable at %s: %w", serverURL, err)
	}

	format, err := cmdutil.GetOutputFormatParsed()
	if err != nil {
		return err
	}

	switch format {
	case output.FormatJSON:
		return output.PrintJSON(os.Stdout, health)
	case output.FormatYAML:
		return output.PrintYAML(os.Stdout, health)
	default:
		printHealthTable(serverURL, health)
		return nil
	}
}

func printHealthTable(serverURL string, health *apiclient.HealthResponse) {
	fmt.Println()
	fmt.Printf("Daemon:     %s\n", serverURL)
	fmt.Printf("Status:     %s\n", health.Status)
	fmt.Printf("Service:    %s\n", health.Service)
	fmt.Printf("Uptime:     %s\n", (time.Duration(health.UptimeSeconds) * time.Second).String())
	fmt.Printf("Sessions:   %d\n", health.Sessions)
	fmt.Printf("Transfers:  %d\n", health.Transfers)
	fmt.Println()
	fmt.Printf("Load:\n")
	fmt.Printf("  CPU:       %.1f%%\n", health.Load.CPUPercent)
	fmt.Printf("  RAM free:  %d MB\n", health.Load.RAMFreeMB)
	fmt.Printf("  IO busy:   %s\n", cmdutil.BoolToYesNo(health.Load.IOBusy))
	if len(health.Load.Hints) > 0 {
		fmt.Printf("  Hints:\n")
		for _, h := range health.Load.Hints {
			fmt.Printf("    - %s\n", h)
		}
	}
	fmt.Println()
}
