// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"

	"taskflow/internal/service"
	"taskflow/internal/stats"
	"taskflow/internal/task"
)

const (
	// ListSeparator is the separator line under section headers.
	ListSeparator = "------------"
)

// FormatTask formats a task line.
// Format: "{N:>4}  [x] {TITLE}" followed by "  ({priority}, due {date})"
// when either is known.
func FormatTask(w io.Writer, num int, t task.Task) {
	mark := " "
	if t.Completed {
		mark = "x"
	}
	fmt.Fprintf(w, "%4d  [%s] %s%s\n", num, mark, normalizeTitle(t.Title), details(t))
}

// FormatTaskDetail prints every field of a task.
func FormatTaskDetail(w io.Writer, t task.Task) {
	status := "pending"
	if t.Completed {
		status = "done"
	}
	priority := string(t.Priority)
	if priority == "" {
		priority = "-"
	}
	due := t.DueString()
	if due == "" {
		due = "-"
	}
	fmt.Fprintf(w, "id:          %s\n", t.ID)
	fmt.Fprintf(w, "title:       %s\n", normalizeTitle(t.Title))
	if d := strings.TrimSpace(t.Description); d != "" {
		fmt.Fprintf(w, "description: %s\n", oneLine(d))
	}
	fmt.Fprintf(w, "priority:    %s\n", priority)
	fmt.Fprintf(w, "due:         %s\n", due)
	fmt.Fprintf(w, "status:      %s\n", status)
}

// FormatHeader formats a section header with a task count.
func FormatHeader(w io.Writer, label string, count int) {
	fmt.Fprintln(w, ListSeparator)
	fmt.Fprintf(w, "%s (%d)\n", label, count)
	fmt.Fprintln(w, ListSeparator)
}

// FormatStats formats the dashboard statistics.
func FormatStats(w io.Writer, s stats.Stats) {
	fmt.Fprintf(w, "%-12s %d\n", "Total", s.Total)
	fmt.Fprintf(w, "%-12s %d\n", "Completed", s.Completed)
	fmt.Fprintf(w, "%-12s %d\n", "Pending", s.Pending)
	fmt.Fprintf(w, "%-12s %d%%\n", "Progress", s.CompletionPercentage)
	fmt.Fprintf(w, "%-12s %d\n", "High", s.High)
	fmt.Fprintf(w, "%-12s %d\n", "Medium", s.Medium)
	fmt.Fprintf(w, "%-12s %d\n", "Low", s.Low)
}

// FormatUser formats the current user.
func FormatUser(w io.Writer, u service.User) {
	fmt.Fprintf(w, "id:    %s\n", u.ID)
	if u.Name != "" {
		fmt.Fprintf(w, "name:  %s\n", u.Name)
	}
	if u.Email != "" {
		fmt.Fprintf(w, "email: %s\n", u.Email)
	}
}

func details(t task.Task) string {
	var parts []string
	if t.Priority != task.PriorityNone {
		parts = append(parts, string(t.Priority))
	}
	if t.HasDue() {
		parts = append(parts, "due "+t.DueString())
	}
	if len(parts) == 0 {
		return ""
	}
	return "  (" + strings.Join(parts, ", ") + ")"
}

// normalizeTitle normalizes a task title for display.
// - Empty or whitespace-only titles become "(untitled)"
// - Newlines are replaced with spaces
func normalizeTitle(title string) string {
	title = oneLine(title)
	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}

func oneLine(s string) string {
	s = strings.ReplaceAll(s, "\r", " ")
	return strings.ReplaceAll(s, "\n", " ")
}
