// Command fundb works with SQLite tables declared in YAML or CUE files.
package main

import (
	"os"

	"github.com/roach88/fundb/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		os.Exit(cli.GetExitCode(err))
	}
}
