package commands

import (
	"context"
	"io"

	"taskflow/internal/config"
	"taskflow/internal/exitcode"
	"taskflow/internal/lifecycle"
	"taskflow/internal/output"
)

func init() {
	Register(&WhoamiCmd{})
}

// WhoamiCmd prints the logged-in user, verifying the stored session.
type WhoamiCmd struct{ base }

func (c *WhoamiCmd) Name() string     { return "whoami" }
func (c *WhoamiCmd) Synopsis() string { return "Show the logged-in user" }
func (c *WhoamiCmd) Usage() string    { return "taskflow whoami" }

func (c *WhoamiCmd) Run(ctx context.Context, cfg *config.Config, ctl *lifecycle.Controller, args []string, out, errOut io.Writer) int {
	u, err := ctl.RestoreSession(ctx)
	if err != nil {
		return report(errOut, err, "request failed")
	}
	output.FormatUser(out, u)
	return exitcode.Success
}
