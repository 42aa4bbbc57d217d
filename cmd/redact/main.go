// Package main provides the entry point for the redact CLI.
package main

import (
	"os"

	"github.com/tsawler/redact/cmd/redact/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(cmd.ExitCode(err))
	}
}
