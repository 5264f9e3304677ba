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

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List connected sessions",
	Long: `List the WebSocket sessions currently connected to the daemon.

Shows each session's user, device, connection age, event queue depth and
reported capabilities.

Examples:
  # List sessions
  skiffctl sessions

  # Output as JSON
  skiffctl sessions -o json`,
	RunE: runSessions,
}

func runSessions(cmd *cobra.Command, args []string) error {
	client, err := cmdutil.GetAuthenticatedClient()
	if err != nil {
		return err
	}

	resp, err := client.Sessions()
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}

	table := output.NewTableData("ID", "USER", "DEVICE", "CONNECTED", "QUEUE", "CAPABILITIES")
	for _, s := range resp.Sessions {
		table.AddRow(
			s.ID,
			s.Username,
			cmdutil.EmptyOr(s.DeviceID, "-"),
			formatAge(s.ConnectedAt),
			fmt.Sprintf("%d", s.QueueLen),
			formatCapabilities(s.Capabilities),
		)
	}

	return cmdutil.PrintOutput(os.Stdout, resp, len(resp.Sessions) == 0, "No sessions connected", table)
}

func formatAge(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return time.Since(t).Round(time.Second).String()
}

func formatCapabilities(caps *apiclient.ClientCapabilities) string {
	if caps == nil {
		return "-"
	}

	var tags []string
	if caps.CanGenerateThumbnails {
		tags = append(tags, "thumbnails")
	}
	if caps.CanSearchLocally {
		tags = append(tags, "search")
	}
	if caps.CanCompress {
		tags = append(tags, "compress")
	}
	if caps.HasGPU {
		tags = append(tags, "gpu")
	}

	if len(tags) == 0 {
		return fmt.Sprintf("%d cores", caps.CPUCores)
	}

	out := tags[0]
	for _, t := range tags[1:] {
		out += "," + t
	}
	return out
}
