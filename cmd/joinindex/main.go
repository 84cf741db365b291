// Package main provides the entry point for the joinindex CLI.
package main

import (
	"os"

	"github.com/Aman-CERP/joinindex/cmd/joinindex/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
