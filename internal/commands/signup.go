package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"taskflow/internal/config"
	"taskflow/internal/exitcode"
	"taskflow/internal/lifecycle"
	"taskflow/internal/service"
)

func init() {
	Register(&SignupCmd{})
}

// SignupCmd implements the signup command. It registers an account but
// does not log in.
type SignupCmd struct {
	base
	in service.SignupInput
}

// SetInput sets the registration details (for testing).
func (c *SignupCmd) SetInput(in service.SignupInput) {
	c.in = in
}

func (c *SignupCmd) Name() string      { return "signup" }
func (c *SignupCmd) Aliases() []string { return []string{"register"} }
func (c *SignupCmd) Synopsis() string  { return "Create an account" }
func (c *SignupCmd) Usage() string     { return "taskflow signup --name <name> --email <email> --password <password>" }
func (c *SignupCmd) NeedsAuth() bool   { return false }

func (c *SignupCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.in.Name, "name", "", "")
	fs.StringVar(&c.in.Email, "email", "", "")
	fs.StringVar(&c.in.Password, "password", "", "")
}

func (c *SignupCmd) Run(ctx context.Context, cfg *config.Config, ctl *lifecycle.Controller, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		return userError(errOut, "unexpected argument: %s", args[0])
	}
	if err := ctl.Signup(ctx, c.in); err != nil {
		return report(errOut, err, "registration failed, please try again")
	}
	if !cfg.Quiet {
		fmt.Fprintln(out, "registration successful, you can now log in")
	}
	return exitcode.Success
}
