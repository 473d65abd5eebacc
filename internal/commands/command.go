// Package commands provides the command interface and implementations.
package commands

import (
	"context"
	"flag"
	"io"

	"taskflow/internal/config"
	"taskflow/internal/lifecycle"
)

// Command defines the interface for CLI commands.
type Command interface {
	// Name returns the primary command name.
	Name() string

	// Aliases returns alternative names for the command.
	Aliases() []string

	// Synopsis returns a short description for help output.
	Synopsis() string

	// Usage returns the usage string for help output.
	Usage() string

	// NeedsAuth returns true if the command requires a stored session.
	NeedsAuth() bool

	// UsesSession returns true if the command talks to the controller.
	// help and version return false.
	UsesSession() bool

	// RegisterFlags registers command-specific flags.
	RegisterFlags(fs *flag.FlagSet)

	// Run executes the command.
	// ctl is nil if UsesSession() returns false.
	// args contains positional arguments after flag parsing.
	// Returns exit code.
	Run(ctx context.Context, cfg *config.Config, ctl *lifecycle.Controller, args []string, out, errOut io.Writer) int
}

// base supplies the defaults most commands share.
type base struct{}

func (base) Aliases() []string           { return nil }
func (base) NeedsAuth() bool             { return true }
func (base) UsesSession() bool           { return true }
func (base) RegisterFlags(*flag.FlagSet) {}
