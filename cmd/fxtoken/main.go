// Package main provides the entry point for fxtoken.
//
// fxtoken encodes, decodes and seeds share tokens locally and manages a
// running fxgallery-server.
package main

import (
	"fmt"
	"os"

	"github.com/yndnr/fxgallery/internal/cli/command"
)

func main() {
	app := command.App()

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
