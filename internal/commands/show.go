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
	Register(&ShowCmd{})
}

// ShowCmd prints every field of one task.
type ShowCmd struct{ base }

func (c *ShowCmd) Name() string     { return "show" }
func (c *ShowCmd) Synopsis() string { return "Show a task" }
func (c *ShowCmd) Usage() string    { return "taskflow show <ref>" }

func (c *ShowCmd) Run(ctx context.Context, cfg *config.Config, ctl *lifecycle.Controller, args []string, out, errOut io.Writer) int {
	t, refErr, err := resolveTask(ctx, ctl, args)
	if err != nil {
		return report(errOut, err, "request failed")
	}
	if refErr != nil {
		return refError(errOut, refErr)
	}
	output.FormatTaskDetail(out, t)
	return exitcode.Success
}
