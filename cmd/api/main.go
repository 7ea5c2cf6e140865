package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

// set at build time with -ldflags
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd := NewRootCmd()
	cmd.Version = fmt.Sprintf("%s (commit: %s)", version, commit)

	if err := cmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
