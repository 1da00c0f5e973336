// Command hexwar records, stores and replays wargame move sequences.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/hexwar/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
