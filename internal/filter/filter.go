// Package filter evaluates the closed set of task view filters.
package filter

import (
	"fmt"
	"strings"
	"time"

	"taskflow/internal/task"
)

// Kind is one of the supported filters.
type Kind string

const (
	All    Kind = "all"
	Today  Kind = "today"
	Week   Kind = "week"
	Low    Kind = "low"
	Medium Kind = "medium"
	High   Kind = "high"
)

// weekSpan is the inclusive length of the week window in days.
const weekSpan = 7

// Kinds returns every filter in display order.
func Kinds() []Kind {
	return []Kind{All, Today, Week, High, Medium, Low}
}

// ParseKind parses a filter name case-insensitively.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if k == "" {
		return All, nil
	}
	for _, known := range Kinds() {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown filter: %s", s)
}

// Label returns the heading shown for a filtered view.
func (k Kind) Label() string {
	switch k {
	case Today:
		return "Today's Tasks"
	case Week:
		return "This Week"
	case High:
		return "High Priority"
	case Medium:
		return "Medium Priority"
	case Low:
		return "Low Priority"
	default:
		return "All Tasks"
	}
}

// Apply returns the tasks matching k, preserving their relative order.
// ref supplies "today"; only its calendar day is used.
func Apply(tasks []task.Task, k Kind, ref time.Time) []task.Task {
	match := predicate(k, ref)
	out := make([]task.Task, 0, len(tasks))
	for _, t := range tasks {
		if match(t) {
			out = append(out, t)
		}
	}
	return out
}

// Count returns how many tasks match k.
func Count(tasks []task.Task, k Kind, ref time.Time) int {
	match := predicate(k, ref)
	n := 0
	for _, t := range tasks {
		if match(t) {
			n++
		}
	}
	return n
}

// Match reports whether t matches k.
func Match(t task.Task, k Kind, ref time.Time) bool {
	return predicate(k, ref)(t)
}

func predicate(k Kind, ref time.Time) func(task.Task) bool {
	day := task.Date(ref)
	switch k {
	case Today:
		return func(t task.Task) bool {
			return t.Due != nil && t.Due.Equal(day)
		}
	case Week:
		end := day.AddDate(0, 0, weekSpan)
		return func(t task.Task) bool {
			return t.Due != nil && !t.Due.Before(day) && !t.Due.After(end)
		}
	case Low, Medium, High:
		want := task.Priority(k)
		return func(t task.Task) bool {
			return t.Priority == want
		}
	default:
		return func(task.Task) bool { return true }
	}
}
