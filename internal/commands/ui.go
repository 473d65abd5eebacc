package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"taskflow/internal/config"
	"taskflow/internal/exitcode"
	"taskflow/internal/lifecycle"
	"taskflow/internal/ui"
)

func init() {
	Register(&UICmd{})
}

// UICmd starts the interactive dashboard.
type UICmd struct {
	base
	in io.Reader
}

// SetInput replaces the terminal input (for testing).
func (c *UICmd) SetInput(r io.Reader) {
	c.in = r
}

func (c *UICmd) Name() string      { return "ui" }
func (c *UICmd) Aliases() []string { return []string{"dashboard"} }
func (c *UICmd) Synopsis() string  { return "Open the interactive dashboard" }
func (c *UICmd) Usage() string     { return "taskflow ui" }

func (c *UICmd) Run(ctx context.Context, cfg *config.Config, ctl *lifecycle.Controller, args []string, out, errOut io.Writer) int {
	in := c.in
	if in == nil {
		in = os.Stdin
	}
	res, err := ui.Run(ctx, ctl, in, out)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.BackendError
	}
	if res.Expired {
		fmt.Fprintf(errOut, "error: %s\n", msgSessionExpired)
		return exitcode.AuthError
	}
	return exitcode.Success
}
