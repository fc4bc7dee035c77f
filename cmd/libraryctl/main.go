// Command libraryctl is the operator tool for the library service:
// account provisioning, token issue and revocation, reports and event
// inspection.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := execute(ctx, os.Stdout, os.Args[1:]); err != nil {
		stop()
		os.Exit(1)
	}
}
