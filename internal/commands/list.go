package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"time"

	"taskflow/internal/cache"
	"taskflow/internal/config"
	"taskflow/internal/exitcode"
	"taskflow/internal/filter"
	"taskflow/internal/lifecycle"
	"taskflow/internal/output"
)

func init() {
	Register(&ListCmd{})
}

// ListCmd implements the list command.
// Handles both `taskflow` (no args) and `taskflow list --filter <kind>`.
type ListCmd struct {
	base
	filter  string
	offline bool
}

// SetFilter sets the filter name (for testing).
func (c *ListCmd) SetFilter(name string) {
	c.filter = name
}

// SetOffline selects the cached collection (for testing).
func (c *ListCmd) SetOffline(offline bool) {
	c.offline = offline
}

func (c *ListCmd) Name() string      { return "list" }
func (c *ListCmd) Aliases() []string { return []string{"ls"} }
func (c *ListCmd) Synopsis() string  { return "List tasks" }
func (c *ListCmd) Usage() string     { return "taskflow list [--filter <kind>] [--offline]" }

func (c *ListCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.filter, "filter", "", "")
	fs.StringVar(&c.filter, "f", "", "")
	fs.BoolVar(&c.offline, "offline", false, "")
}

func (c *ListCmd) Run(ctx context.Context, cfg *config.Config, ctl *lifecycle.Controller, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		return userError(errOut, "unexpected argument: %s", args[0])
	}
	kind, err := filter.ParseKind(c.filter)
	if err != nil {
		return userError(errOut, "%v", err)
	}

	if code, loaded := load(ctx, cfg, ctl, c.offline, errOut); !loaded {
		return code
	}

	// Numbers are positions in the full collection so they stay valid as
	// references whatever the filter.
	all := ctl.Tasks()
	now := time.Now()
	count := filter.Count(all, kind, now)
	if count == 0 {
		if !cfg.Quiet {
			fmt.Fprintln(out, "no tasks found")
		}
		return exitcode.Success
	}

	output.FormatHeader(out, kind.Label(), count)
	for i, t := range all {
		if filter.Match(t, kind, now) {
			output.FormatTask(out, i+1, t)
		}
	}
	return exitcode.Success
}

// load fills the controller's collection from the gateway, or from the
// task cache when offline is set. It reports failures itself.
func load(ctx context.Context, cfg *config.Config, ctl *lifecycle.Controller, offline bool, errOut io.Writer) (int, bool) {
	if !offline {
		if _, err := ctl.Refresh(ctx); err != nil {
			return report(errOut, err, "request failed"), false
		}
		return exitcode.Success, true
	}

	at, err := ctl.RestoreCached(ctx)
	switch {
	case errors.Is(err, lifecycle.ErrNoCache):
		return userError(errOut, "task cache is disabled"), false
	case errors.Is(err, cache.ErrNotFound):
		return userError(errOut, "no cached tasks (run: taskflow list)"), false
	case err != nil:
		return report(errOut, err, ""), false
	}
	if !cfg.Quiet {
		fmt.Fprintf(errOut, "showing tasks cached at %s\n", at.Local().Format("2006-01-02 15:04"))
	}
	return exitcode.Success, true
}
