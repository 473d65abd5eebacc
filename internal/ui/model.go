// Package ui provides the interactive task dashboard.
package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"taskflow/internal/filter"
	"taskflow/internal/lifecycle"
	"taskflow/internal/output"
	"taskflow/internal/service"
	"taskflow/internal/stats"
	"taskflow/internal/task"
)

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	cardStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	activeTabStyle = lipgloss.NewStyle().Bold(true).Underline(true).Foreground(lipgloss.Color("13"))
	tabStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	footerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// refreshedMsg carries the result of a refresh.
type refreshedMsg struct {
	tasks []task.Task
	err   error
}

// eventMsg carries a controller event.
type eventMsg struct {
	event lifecycle.Event
}

// Model is the dashboard state.
type Model struct {
	ctx    context.Context
	ctl    *lifecycle.Controller
	events <-chan lifecycle.Event
	now    func() time.Time

	kinds   []filter.Kind
	active  int
	tasks   []task.Task
	spin    spinner.Model
	loading bool
	err     error

	// Expired is set when the session ended because the gateway rejected it.
	Expired  bool
	Quitting bool
}

// New returns a dashboard for ctl. events usually comes from Watch.
func New(ctx context.Context, ctl *lifecycle.Controller, events <-chan lifecycle.Event) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return Model{
		ctx:     ctx,
		ctl:     ctl,
		events:  events,
		now:     time.Now,
		kinds:   filter.Kinds(),
		tasks:   ctl.Tasks(),
		spin:    sp,
		loading: true,
	}
}

// Filter returns the selected filter.
func (m Model) Filter() filter.Kind {
	return m.kinds[m.active]
}

// Tasks returns the collection on display, unfiltered.
func (m Model) Tasks() []task.Task {
	return m.tasks
}

// Loading reports whether a refresh is in flight.
func (m Model) Loading() bool {
	return m.loading
}

// Err returns the last refresh error shown in the status line.
func (m Model) Err() error {
	return m.err
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, refreshCmd(m.ctx, m.ctl), waitForEvent(m.ctx, m.events))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case spinner.TickMsg:
		if m.loading {
			var cmd tea.Cmd
			m.spin, cmd = m.spin.Update(msg)
			return m, cmd
		}
	case refreshedMsg:
		m.loading = false
		switch {
		case msg.err == nil:
			m.tasks = msg.tasks
			m.err = nil
		case service.IsUnauthorized(msg.err), errors.Is(msg.err, lifecycle.ErrNotAuthenticated),
			errors.Is(msg.err, lifecycle.ErrSessionEnded):
			m.Expired = true
			m.Quitting = true
			return m, tea.Quit
		case errors.Is(msg.err, lifecycle.ErrRefreshInProgress):
			// The running refresh reports through the event channel.
		default:
			m.err = msg.err
		}
	case eventMsg:
		switch ev := msg.event.(type) {
		case lifecycle.EventTasksRefreshed:
			m.tasks = ev.Tasks
		case lifecycle.EventLoggedOut:
			m.Expired = ev.Reason == lifecycle.ReasonUnauthorized
			m.Quitting = true
			return m, tea.Quit
		}
		return m, waitForEvent(m.ctx, m.events)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key := msg.String(); key {
	case "ctrl+c", "q", "esc":
		m.Quitting = true
		return m, tea.Quit
	case "r", "f5":
		if m.loading {
			return m, nil
		}
		m.loading = true
		return m, tea.Batch(m.spin.Tick, refreshCmd(m.ctx, m.ctl))
	case "tab", "right", "l":
		m.active = (m.active + 1) % len(m.kinds)
	case "shift+tab", "left", "h":
		m.active = (m.active + len(m.kinds) - 1) % len(m.kinds)
	default:
		if len(key) == 1 && key[0] >= '1' && int(key[0]-'1') < len(m.kinds) {
			m.active = int(key[0] - '1')
		}
	}
	return m, nil
}

func (m Model) View() string {
	if m.Quitting {
		return ""
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render("taskflow") + "\n\n")
	b.WriteString(renderStats(stats.Compute(m.tasks)) + "\n\n")
	b.WriteString(m.renderTabs() + "\n\n")
	m.renderTasks(&b)

	b.WriteString("\n")
	switch {
	case m.loading:
		b.WriteString(m.spin.View() + " refreshing...\n")
	case m.err != nil:
		b.WriteString(errorStyle.Render("error: "+service.Message(m.err, m.err.Error())) + "\n")
	}
	b.WriteString(footerStyle.Render("tab/shift+tab or 1-6: filter  r: refresh  q: quit") + "\n")
	return b.String()
}

func renderStats(s stats.Stats) string {
	cards := []string{
		cardStyle.Render(fmt.Sprintf("Total\n%d", s.Total)),
		cardStyle.Render(fmt.Sprintf("Completed\n%d", s.Completed)),
		cardStyle.Render(fmt.Sprintf("Pending\n%d", s.Pending)),
		cardStyle.Render(fmt.Sprintf("Progress\n%d%%", s.CompletionPercentage)),
		cardStyle.Render(fmt.Sprintf("High\n%d", s.High)),
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cards...)
}

func (m Model) renderTabs() string {
	now := m.now()
	tabs := make([]string, len(m.kinds))
	for i, k := range m.kinds {
		label := fmt.Sprintf("%d %s (%d)", i+1, k.Label(), filter.Count(m.tasks, k, now))
		if i == m.active {
			tabs[i] = activeTabStyle.Render(label)
		} else {
			tabs[i] = tabStyle.Render(label)
		}
	}
	return strings.Join(tabs, "  ")
}

func (m Model) renderTasks(b *strings.Builder) {
	kind, now := m.Filter(), m.now()
	shown := 0
	for i, t := range m.tasks {
		if filter.Match(t, kind, now) {
			output.FormatTask(b, i+1, t)
			shown++
		}
	}
	if shown == 0 {
		b.WriteString("no tasks found\n")
	}
}

func refreshCmd(ctx context.Context, ctl *lifecycle.Controller) tea.Cmd {
	return func() tea.Msg {
		tasks, err := ctl.Refresh(ctx)
		return refreshedMsg{tasks: tasks, err: err}
	}
}

func waitForEvent(ctx context.Context, ch <-chan lifecycle.Event) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case ev := <-ch:
			return eventMsg{event: ev}
		case <-ctx.Done():
			return nil
		}
	}
}
