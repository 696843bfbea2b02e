// Package main provides the entry point for fleetdesk-cli.
package main

import (
	"context"
	"os"

	"github.com/fleetdesk/fleetdesk-go/internal/cli/command"
	"github.com/fleetdesk/fleetdesk-go/internal/infra/shutdown"
)

func main() {
	ctx, stop := shutdown.WithSignals(context.Background())
	defer stop()

	app := command.App()
	if err := app.RunContext(ctx, os.Args); err != nil {
		command.PrintError("%v", err)
		stop()
		os.Exit(1)
	}
}
