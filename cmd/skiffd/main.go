// skiffd is the orchestration daemon fronting a file-manager backend for
// connected WebSocket clients.
package main

import (
	"fmt"
	"os"

	"github.com/skiffworks/skiff/cmd/skiffd/commands"
)

// Build-time variables injected via ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.Version = version
	commands.Commit = commit
	commands.Date = date

	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
