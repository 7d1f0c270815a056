package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rypi-dev/photos-stats/internal/cli"
)

// Build variables - set by ldflags during build.
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	cli.Version = version
	cli.Commit = commit

	// Arrêt propre sur Ctrl-C / SIGTERM : la requête en cours est annulée
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.Execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()

	os.Exit(code)
}
