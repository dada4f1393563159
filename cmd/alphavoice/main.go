// Package main provides the alphavoice CLI process entrypoint.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/alphavoice/alphavoice/internal/app"
)

// main wires process signal handling to the application runner.
func main() {
	exitCode := 0
	onMainThread(func() {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		exitCode = app.Execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	})
	os.Exit(exitCode)
}
