package commands

import (
	"context"
	"io"

	"taskflow/internal/config"
	"taskflow/internal/lifecycle"
)

func init() {
	Register(&DoneCmd{})
	Register(&UndoCmd{})
}

// DoneCmd implements the done command.
type DoneCmd struct{ base }

func (c *DoneCmd) Name() string      { return "done" }
func (c *DoneCmd) Aliases() []string { return []string{"complete"} }
func (c *DoneCmd) Synopsis() string  { return "Mark a task completed" }
func (c *DoneCmd) Usage() string     { return "taskflow done <ref>" }

func (c *DoneCmd) Run(ctx context.Context, cfg *config.Config, ctl *lifecycle.Controller, args []string, out, errOut io.Writer) int {
	return runSetCompleted(ctx, cfg, ctl, args, true, out, errOut)
}

// UndoCmd marks a completed task pending again.
type UndoCmd struct{ base }

func (c *UndoCmd) Name() string      { return "undo" }
func (c *UndoCmd) Aliases() []string { return []string{"reopen"} }
func (c *UndoCmd) Synopsis() string  { return "Mark a task pending" }
func (c *UndoCmd) Usage() string     { return "taskflow undo <ref>" }

func (c *UndoCmd) Run(ctx context.Context, cfg *config.Config, ctl *lifecycle.Controller, args []string, out, errOut io.Writer) int {
	return runSetCompleted(ctx, cfg, ctl, args, false, out, errOut)
}

// runSetCompleted is the shared implementation for done and undo.
func runSetCompleted(ctx context.Context, cfg *config.Config, ctl *lifecycle.Controller, args []string, completed bool, out, errOut io.Writer) int {
	t, refErr, err := resolveTask(ctx, ctl, args)
	if err != nil {
		return report(errOut, err, "request failed")
	}
	if refErr != nil {
		return refError(errOut, refErr)
	}

	if _, err := ctl.SetCompleted(ctx, t.ID, completed); err != nil {
		return report(errOut, err, "request failed")
	}
	return acknowledge(out, cfg.Quiet)
}
