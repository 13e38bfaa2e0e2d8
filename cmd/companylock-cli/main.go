// Package main provides the entry point for companylock-cli.
//
// companylock-cli lets administrators issue single-use access tokens
// and lets employees redeem them for their password, in single-command
// mode or interactive REPL mode.
package main

import (
	"os"

	"github.com/NDP4/CompanyLock-Manager/internal/cli/command"
)

func main() {
	app := command.App()

	if err := app.Run(os.Args); err != nil {
		command.PrintError(os.Stderr, err)
		os.Exit(1)
	}
}
