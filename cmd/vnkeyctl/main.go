// Package main is the entry point for the vnkey control CLI.
package main

import (
	"os"

	"vnkey/cmd/vnkeyctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
