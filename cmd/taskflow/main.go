// Package main is the entry point for the taskflow CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"

	"taskflow/internal/backend/googletasks"
	"taskflow/internal/backend/rest"
	"taskflow/internal/cli"
	"taskflow/internal/commands"
	"taskflow/internal/config"
	"taskflow/internal/service"
)

func main() {
	// Create context that cancels on interrupt
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, newGateway)

	code := dispatcher.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	cancel()
	os.Exit(code)
}

// newGateway builds the gateway for the configured backend.
func newGateway(ctx context.Context, cfg *config.Config, logger *log.Logger) (service.Gateway, error) {
	switch cfg.Backend {
	case config.BackendGoogleTasks:
		return googletasks.New(cfg, logger)
	default:
		return rest.New(cfg, logger), nil
	}
}
