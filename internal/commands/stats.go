package commands

import (
	"context"
	"flag"
	"io"

	"taskflow/internal/config"
	"taskflow/internal/exitcode"
	"taskflow/internal/lifecycle"
	"taskflow/internal/output"
)

func init() {
	Register(&StatsCmd{})
}

// StatsCmd implements the stats command.
type StatsCmd struct {
	base
	offline bool
}

func (c *StatsCmd) Name() string     { return "stats" }
func (c *StatsCmd) Synopsis() string { return "Show task statistics" }
func (c *StatsCmd) Usage() string    { return "taskflow stats [--offline]" }

func (c *StatsCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.offline, "offline", false, "")
}

func (c *StatsCmd) Run(ctx context.Context, cfg *config.Config, ctl *lifecycle.Controller, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		return userError(errOut, "unexpected argument: %s", args[0])
	}
	if code, loaded := load(ctx, cfg, ctl, c.offline, errOut); !loaded {
		return code
	}
	output.FormatStats(out, ctl.Stats())
	return exitcode.Success
}
