// adrive-sync - one-shot directory synchronizer for a cloud-drive folder.
package main

import (
	"fmt"
	"os"

	"github.com/adrive/adrive-sync/internal/cli"
)

var (
	Version   = "v0.1.0-dev"
	BuildTime = "2026-07-31"
)

func main() {
	cli.Version = Version
	cli.BuildTime = BuildTime

	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
