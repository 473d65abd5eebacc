package commands

import (
	"context"
	"io"

	"taskflow/internal/config"
	"taskflow/internal/lifecycle"
)

func init() {
	Register(&RmCmd{})
}

// RmCmd implements the rm command.
type RmCmd struct{ base }

func (c *RmCmd) Name() string      { return "rm" }
func (c *RmCmd) Aliases() []string { return []string{"delete"} }
func (c *RmCmd) Synopsis() string  { return "Delete a task" }
func (c *RmCmd) Usage() string     { return "taskflow rm <ref>" }

func (c *RmCmd) Run(ctx context.Context, cfg *config.Config, ctl *lifecycle.Controller, args []string, out, errOut io.Writer) int {
	t, refErr, err := resolveTask(ctx, ctl, args)
	if err != nil {
		return report(errOut, err, "request failed")
	}
	if refErr != nil {
		return refError(errOut, refErr)
	}

	if err := ctl.DeleteTask(ctx, t.ID); err != nil {
		return report(errOut, err, "request failed")
	}
	return acknowledge(out, cfg.Quiet)
}
