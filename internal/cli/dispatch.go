// Package cli parses the command line and runs commands.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"strings"

	"github.com/charmbracelet/log"

	"taskflow/internal/cache"
	"taskflow/internal/commands"
	"taskflow/internal/config"
	"taskflow/internal/exitcode"
	"taskflow/internal/lifecycle"
	"taskflow/internal/logging"
	"taskflow/internal/service"
	"taskflow/internal/session"
)

// GatewayFactory creates the gateway for the configured backend.
// Used to inject the backend during dispatch.
type GatewayFactory func(ctx context.Context, cfg *config.Config, logger *log.Logger) (service.Gateway, error)

// Dispatcher handles command-line parsing and dispatch.
type Dispatcher struct {
	registry *commands.Registry
	factory  GatewayFactory
}

// NewDispatcher creates a new dispatcher with the given registry and gateway factory.
func NewDispatcher(registry *commands.Registry, factory GatewayFactory) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		factory:  factory,
	}
}

// Run parses arguments and dispatches to the appropriate command.
// Returns the exit code.
func (d *Dispatcher) Run(ctx context.Context, args []string, out, errOut io.Writer) int {
	// No args -> dispatch to "list" command with no args
	if len(args) == 0 {
		return d.dispatch(ctx, "list", nil, out, errOut)
	}

	// Flags require a command
	if strings.HasPrefix(args[0], "-") {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", args[0])
		return exitcode.UserError
	}
	return d.dispatch(ctx, args[0], args[1:], out, errOut)
}

func (d *Dispatcher) dispatch(ctx context.Context, cmdName string, args []string, out, errOut io.Writer) int {
	cmd, ok := d.registry.Find(cmdName)
	if !ok {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", cmdName)
		return exitcode.UserError
	}
	return d.dispatchCommand(ctx, cmd, args, out, errOut)
}

func (d *Dispatcher) dispatchCommand(ctx context.Context, cmd commands.Command, args []string, out, errOut io.Writer) int {
	flags := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	flags.SetOutput(io.Discard) // We handle errors ourselves

	// Common flags
	var configDir string
	var quiet bool
	var debug bool

	flags.StringVar(&configDir, "config", "", "")
	flags.BoolVar(&quiet, "quiet", false, "")
	flags.BoolVar(&debug, "debug", false, "")

	cmd.RegisterFlags(flags)

	if err := flags.Parse(args); err != nil {
		return flagError(errOut, err)
	}

	// A leading dash after parsing means a flag came after a positional argument.
	positionalArgs := flags.Args()
	if len(positionalArgs) > 0 && strings.HasPrefix(positionalArgs[0], "-") {
		fmt.Fprintf(errOut, "error: unknown flag: %s\n", positionalArgs[0])
		return exitcode.UserError
	}

	cfg, err := config.New(configDir)
	if err != nil {
		fmt.Fprintf(errOut, "error: %s\n", err)
		return exitcode.UserError
	}
	cfg.Quiet = quiet
	cfg.Debug = debug

	if !cmd.UsesSession() {
		return cmd.Run(ctx, cfg, nil, positionalArgs, out, errOut)
	}

	logger := logging.FromConfig(errOut, cfg.LogLevel, cfg.LogFormat, cfg.Debug)
	logger.Debug("dispatch", "command", cmd.Name(), "backend", cfg.Backend, "dir", cfg.Dir)

	ctl, cleanup, code := d.controller(ctx, cfg, logger, errOut)
	if ctl == nil {
		return code
	}
	defer cleanup()

	if cmd.NeedsAuth() && ctl.State() != lifecycle.Authenticated {
		fmt.Fprintf(errOut, "error: not logged in (run: taskflow login)\n")
		return exitcode.AuthError
	}

	return cmd.Run(ctx, cfg, ctl, positionalArgs, out, errOut)
}

// controller wires the gateway, the session file and the task cache.
// On failure it reports the problem and returns a nil controller.
func (d *Dispatcher) controller(ctx context.Context, cfg *config.Config, logger *log.Logger, errOut io.Writer) (*lifecycle.Controller, func(), int) {
	if d.factory == nil {
		fmt.Fprintln(errOut, "error: backend error: no backend configured")
		return nil, nil, exitcode.BackendError
	}
	gw, err := d.factory(ctx, cfg, logger)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			fmt.Fprintf(errOut, "error: auth error: %s\n", err)
			return nil, nil, exitcode.AuthError
		}
		fmt.Fprintf(errOut, "error: backend error: %s\n", err)
		return nil, nil, exitcode.BackendError
	}

	opts := []lifecycle.Option{lifecycle.WithLogger(logger)}
	cleanup := func() {}

	// The cache is optional; commands work without it.
	if cfg.CacheEnabled() {
		if err := cfg.EnsureDir(); err != nil {
			logger.Warn("task cache unavailable", "err", err)
		} else if c, err := cache.Open(cfg.CachePath()); err != nil {
			logger.Warn("task cache unavailable", "path", cfg.CachePath(), "err", err)
		} else {
			opts = append(opts, lifecycle.WithCache(c))
			cleanup = func() {
				if err := c.Close(); err != nil {
					logger.Warn("close task cache", "err", err)
				}
			}
		}
	}

	store := session.NewFileStore(cfg.SessionPath())
	return lifecycle.New(gw, store, opts...), cleanup, exitcode.Success
}

// flagError reports a flag parsing failure.
func flagError(errOut io.Writer, err error) int {
	errStr := err.Error()
	switch {
	case strings.HasPrefix(errStr, "flag provided but not defined: "):
		fmt.Fprintf(errOut, "error: unknown flag: %s\n", strings.TrimPrefix(errStr, "flag provided but not defined: "))
	case errors.Is(err, flag.ErrHelp):
		fmt.Fprintln(errOut, "error: unknown flag: -h (run: taskflow help)")
	default:
		// Covers "flag needs an argument: -x" and invalid values.
		fmt.Fprintf(errOut, "error: %s\n", errStr)
	}
	return exitcode.UserError
}
