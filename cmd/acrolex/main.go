// The acrolex command is the CLI entry point: corpus runs, registry
// inspection, and ad-hoc alignment scoring.
package main

import (
	"fmt"
	"os"

	"github.com/turtacn/AcroLex/internal/interfaces/cli"
)

// Build-time variables injected via ldflags.
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	cli.Version = version
	cli.GitCommit = commit
	cli.BuildDate = buildDate

	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
