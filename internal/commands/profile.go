package commands

import (
	"context"
	"flag"
	"io"

	"taskflow/internal/config"
	"taskflow/internal/exitcode"
	"taskflow/internal/lifecycle"
	"taskflow/internal/output"
	"taskflow/internal/service"
)

func init() {
	Register(&ProfileCmd{})
	Register(&PasswdCmd{})
}

// ProfileCmd shows or updates the user's name and email.
type ProfileCmd struct {
	base
	name  optionalString
	email optionalString
}

func (c *ProfileCmd) Name() string     { return "profile" }
func (c *ProfileCmd) Synopsis() string { return "Show or update your profile" }
func (c *ProfileCmd) Usage() string    { return "taskflow profile [--name <name>] [--email <email>]" }

func (c *ProfileCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.Var(&c.name, "name", "")
	fs.Var(&c.email, "email", "")
}

func (c *ProfileCmd) Run(ctx context.Context, cfg *config.Config, ctl *lifecycle.Controller, args []string, out, errOut io.Writer) int {
	u, err := ctl.CurrentUser(ctx)
	if err != nil {
		return report(errOut, err, "request failed")
	}
	if !c.name.set && !c.email.set {
		output.FormatUser(out, u)
		return exitcode.Success
	}

	// Unchanged fields keep their current values.
	in := service.ProfileInput{Name: u.Name, Email: u.Email}
	if c.name.set {
		in.Name = c.name.value
	}
	if c.email.set {
		in.Email = c.email.value
	}
	updated, err := ctl.UpdateProfile(ctx, in)
	if err != nil {
		return report(errOut, err, "profile update failed")
	}
	if !cfg.Quiet {
		output.FormatUser(out, updated)
	}
	return exitcode.Success
}

// PasswdCmd changes the user's password.
type PasswdCmd struct {
	base
	current string
	next    string
	confirm string
}

func (c *PasswdCmd) Name() string     { return "passwd" }
func (c *PasswdCmd) Synopsis() string { return "Change your password" }
func (c *PasswdCmd) Usage() string {
	return "taskflow passwd --current <password> --new <password> --confirm <password>"
}

func (c *PasswdCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.current, "current", "", "")
	fs.StringVar(&c.next, "new", "", "")
	fs.StringVar(&c.confirm, "confirm", "", "")
}

func (c *PasswdCmd) Run(ctx context.Context, cfg *config.Config, ctl *lifecycle.Controller, args []string, out, errOut io.Writer) int {
	if err := ctl.ChangePassword(ctx, c.current, c.next, c.confirm); err != nil {
		return report(errOut, err, "password change failed")
	}
	return acknowledge(out, cfg.Quiet)
}
