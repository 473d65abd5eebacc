package commands

import (
	"context"
	"fmt"
	"io"

	"taskflow/internal/config"
	"taskflow/internal/exitcode"
	"taskflow/internal/lifecycle"
)

func init() {
	Register(&HelpCmd{})
}

// HelpCmd implements the help command.
type HelpCmd struct{ base }

func (c *HelpCmd) Name() string      { return "help" }
func (c *HelpCmd) Synopsis() string  { return "Print usage" }
func (c *HelpCmd) Usage() string     { return "taskflow help" }
func (c *HelpCmd) NeedsAuth() bool   { return false }
func (c *HelpCmd) UsesSession() bool { return false }

func (c *HelpCmd) Run(ctx context.Context, cfg *config.Config, ctl *lifecycle.Controller, args []string, out, errOut io.Writer) int {
	fmt.Fprint(out, helpText)
	return exitcode.Success
}

const helpText = `Usage:
  taskflow                                 List all tasks
  taskflow list [--filter <kind>] [--offline]
                                           kind: all, today, week, high, medium, low
  taskflow stats [--offline]
  taskflow show <ref>
  taskflow add [--priority <p>] [--due <YYYY-MM-DD>] [--desc <text>] <title...>
  taskflow edit [--title <t>] [--priority <p>] [--due <YYYY-MM-DD>] [--desc <text>] <ref>
  taskflow done <ref>
  taskflow undo <ref>
  taskflow rm <ref>
  taskflow ui
  taskflow login [--email <email> --password <password>]
  taskflow signup --name <name> --email <email> --password <password>
  taskflow logout
  taskflow whoami
  taskflow profile [--name <name>] [--email <email>]
  taskflow passwd --current <pw> --new <pw> --confirm <pw>
  taskflow help
  taskflow version

A <ref> is the number shown by list, or a task id.

Common flags:
  --config <dir>   Override config directory
  --quiet          Suppress informational output
  --debug          Print debug logs to stderr
`
