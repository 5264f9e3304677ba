package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/skiffworks/skiff/cmd/skiffctl/cmdutil"
	"github.com/skiffworks/skiff/internal/cli/output"
	"github.com/skiffworks/skiff/pkg/apiclient"
)

var (
	offloadPath   string
	offloadWidth  uint32
	offloadHeight uint32
	offloadQuery  string
	offloadPaths  []string
	offloadWaitMs int64
	offloadOut    string
)

var offloadCmd = &cobra.Command{
	Use:       "offload [thumbnail|search]",
	Short:     "Submit an offload task to a capable client",
	ValidArgs: []string{"thumbnail", "search"},
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	Long: `Submit a task for the daemon to dispatch to a connected client that
advertised the matching capability, and wait for the result.

Examples:
  # Ask a client to render a thumbnail
  skiffctl offload thumbnail --path /photos/cat.jpg --width 256 --height 256

  # Ask a client to run a local search
  skiffctl offload search --query "invoice 2026" --paths /docs --paths /archive`,
	RunE: runOffload,
}

func init() {
	offloadCmd.Flags().StringVar(&offloadPath, "path", "", "File path (thumbnail tasks)")
	offloadCmd.Flags().Uint32Var(&offloadWidth, "width", 256, "Thumbnail width in pixels")
	offloadCmd.Flags().Uint32Var(&offloadHeight, "height", 256, "Thumbnail height in pixels")
	offloadCmd.Flags().StringVar(&offloadQuery, "query", "", "Search query (search tasks)")
	offloadCmd.Flags().StringArrayVar(&offloadPaths, "paths", nil, "Search roots (search tasks, repeatable)")
	offloadCmd.Flags().Int64Var(&offloadWaitMs, "wait-ms", 0, "Result wait budget in milliseconds (0 = server default)")
	offloadCmd.Flags().StringVar(&offloadOut, "out", "", "Write the raw result to a file instead of summarizing")
}

func runOffload(cmd *cobra.Command, args []string) error {
	taskType := args[0]

	switch taskType {
	case "thumbnail":
		if offloadPath == "" {
			return fmt.Errorf("--path is required for thumbnail tasks")
		}
	case "search":
		if offloadQuery == "" {
			return fmt.Errorf("--query is required for search tasks")
		}
	}

	client, err := cmdutil.GetAuthenticatedClient()
	if err != nil {
		return err
	}

	resp, err := client.SubmitOffload(apiclient.OffloadRequest{
		TaskType: taskType,
		Path:     offloadPath,
		Width:    offloadWidth,
		Height:   offloadHeight,
		Query:    offloadQuery,
		Paths:    offloadPaths,
		WaitMs:   offloadWaitMs,
	})
	if err != nil {
		return fmt.Errorf("offload failed: %w", err)
	}

	format, err := cmdutil.GetOutputFormatParsed()
	if err != nil {
		return err
	}

	if offloadOut != "" {
		if err := os.WriteFile(offloadOut, resp.Result, 0644); err != nil {
			return fmt.Errorf("failed to write result file: %w", err)
		}
		fmt.Printf("Task %s completed, result written to %s (%d bytes)\n", resp.TaskID, offloadOut, len(resp.Result))
		return nil
	}

	switch format {
	case output.FormatJSON:
		return output.PrintJSON(os.Stdout, resp)
	case output.FormatYAML:
		return output.PrintYAML(os.Stdout, resp)
	default:
		fmt.Printf("Task %s completed (%d bytes)\n", resp.TaskID, len(resp.Result))
		// Search results are JSON and safe to print inline.
		if taskType == "search" {
			fmt.Println(string(resp.Result))
		}
		return nil
	}
}
