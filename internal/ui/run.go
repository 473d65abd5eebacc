package ui

import (
	"context"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"taskflow/internal/lifecycle"
)

// eventBuffer bounds how many undelivered events Watch keeps.
const eventBuffer = 16

// Result reports how the dashboard ended.
type Result struct {
	Expired bool
}

// Watch subscribes to ctl and forwards its events on the returned channel.
// Events that find the buffer full are dropped; the dashboard also learns
// refresh results and forced logouts from Refresh itself. stop
// unsubscribes. The channel is never closed.
func Watch(ctl *lifecycle.Controller) (events <-chan lifecycle.Event, stop func()) {
	ch := make(chan lifecycle.Event, eventBuffer)
	stop = ctl.Subscribe(func(ev lifecycle.Event) {
		select {
		case ch <- ev:
		default:
		}
	})
	return ch, stop
}

// Run shows the dashboard until the user quits or the session ends.
func Run(ctx context.Context, ctl *lifecycle.Controller, in io.Reader, out io.Writer) (Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	events, stop := Watch(ctl)
	defer stop()

	program := tea.NewProgram(New(ctx, ctl, events),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
		tea.WithInput(in),
		tea.WithOutput(out),
	)
	final, err := program.Run()
	if err != nil {
		return Result{}, err
	}
	m, _ := final.(Model)
	return Result{Expired: m.Expired}, nil
}
