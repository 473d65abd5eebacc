package commands

import (
	"context"
	"flag"
	"io"
	"strings"

	"taskflow/internal/config"
	"taskflow/internal/lifecycle"
	"taskflow/internal/service"
)

func init() {
	Register(&AddCmd{})
}

// AddCmd implements the add command.
type AddCmd struct {
	base
	priority    optionalString
	due         optionalString
	description optionalString
}

func (c *AddCmd) Name() string      { return "add" }
func (c *AddCmd) Aliases() []string { return []string{"create"} }
func (c *AddCmd) Synopsis() string  { return "Create a task" }
func (c *AddCmd) Usage() string {
	return "taskflow add [--priority <p>] [--due <YYYY-MM-DD>] [--desc <text>] <title...>"
}

func (c *AddCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.Var(&c.priority, "priority", "")
	fs.Var(&c.priority, "p", "")
	fs.Var(&c.due, "due", "")
	fs.Var(&c.description, "desc", "")
}

func (c *AddCmd) Run(ctx context.Context, cfg *config.Config, ctl *lifecycle.Controller, args []string, out, errOut io.Writer) int {
	in := service.TaskInput{
		Title:       service.String(strings.Join(args, " ")),
		Description: c.description.ptr(),
		Priority:    c.priority.ptr(),
		DueDate:     c.due.ptr(),
	}
	if _, err := ctl.CreateTask(ctx, in); err != nil {
		return report(errOut, err, "request failed")
	}
	return acknowledge(out, cfg.Quiet)
}
