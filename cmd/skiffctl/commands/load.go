package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/skiffworks/skiff/cmd/skiffctl/cmdutil"
	"github.com/skiffworks/skiff/internal/cli/output"
	"github.com/skiffworks/skiff/pkg/apiclient"
)

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Show daemon host load",
	Long: `Display the current host load as reported by the daemon's probe.

This is the same load report the daemon broadcasts to connected clients,
including the offload hints derived from it.

Examples:
  # Show load
  skiffctl load

  # Output as JSON
  skiffctl load -o json`,
	RunE: runLoad,
}

func runLoad(cmd *cobra.Command, args []string) error {
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
		return output.PrintJSON(os.Stdout, health.Load)
	case output.FormatYAML:
		return output.PrintYAML(os.Stdout, health.Load)
	default:
		fmt.Printf("CPU:       %.1f%%\n", health.Load.CPUPercent)
		fmt.Printf("RAM free:  %d MB\n", health.Load.RAMFreeMB)
		fmt.Printf("IO busy:   %s\n", cmdutil.BoolToYesNo(health.Load.IOBusy))
		if len(health.Load.Hints) == 0 {
			fmt.Println("Hints:     none")
		} else {
			fmt.Println("Hints:")
			for _, h := range health.Load.Hints {
				fmt.Printf("  - %s\n", h)
			}
		}
		return nil
	}
}
