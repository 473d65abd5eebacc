package commands

import (
	"context"
	"errors"
	"flag"
	"io"

	"taskflow/internal/config"
	"taskflow/internal/lifecycle"
	"taskflow/internal/service"
	"taskflow/internal/validation"
)

func init() {
	Register(&EditCmd{})
}

// EditCmd implements the edit command. Only the given fields change.
type EditCmd struct {
	base
	title       optionalString
	priority    optionalString
	due         optionalString
	description optionalString
}

func (c *EditCmd) Name() string     { return "edit" }
func (c *EditCmd) Synopsis() string { return "Change a task's fields" }
func (c *EditCmd) Usage() string {
	return "taskflow edit [--title <t>] [--priority <p>] [--due <YYYY-MM-DD>] [--desc <text>] <ref>"
}

func (c *EditCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.Var(&c.title, "title", "")
	fs.Var(&c.priority, "priority", "")
	fs.Var(&c.priority, "p", "")
	fs.Var(&c.due, "due", "")
	fs.Var(&c.description, "desc", "")
}

func (c *EditCmd) Run(ctx context.Context, cfg *config.Config, ctl *lifecycle.Controller, args []string, out, errOut io.Writer) int {
	in := service.TaskInput{
		Title:       c.title.ptr(),
		Description: c.description.ptr(),
		Priority:    c.priority.ptr(),
		DueDate:     c.due.ptr(),
	}
	// Reject bad input before the refresh a reference lookup needs.
	if err := validation.TaskUpdate(in); err != nil {
		return report(errOut, err, "")
	}

	t, refErr, err := resolveTask(ctx, ctl, args)
	if err != nil {
		return report(errOut, err, "request failed")
	}
	if refErr != nil {
		return refError(errOut, refErr)
	}

	if _, err := ctl.UpdateTask(ctx, t.ID, in); err != nil {
		return report(errOut, err, "request failed")
	}
	return acknowledge(out, cfg.Quiet)
}

// refError reports a task reference that could not be resolved.
func refError(errOut io.Writer, err error) int {
	if errors.Is(err, ErrTaskRefRequired) {
		return userError(errOut, "task reference required")
	}
	return userError(errOut, "%v", err)
}
