package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/kailas-cloud/vecdash/internal/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCmd(version.Version).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "vecdash: %v\n", err)
		os.Exit(1)
	}
}
