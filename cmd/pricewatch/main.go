// ABOUTME: Main entry point for the pricewatch CLI
// ABOUTME: Sets version info and executes the Cobra root command
package main

import (
	"fmt"
	"os"

	"github.com/harper/pricewatch/cmd/pricewatch/commands"
)

// Version information (set by goreleaser)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersion(version, commit, date)

	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
