// skiffctl is the command-line client for the skiffd daemon API.
package main

import (
	"fmt"
	"os"

	"github.com/skiffworks/skiff/cmd/skiffctl/commands"
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
