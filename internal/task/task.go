// Package task defines the canonical task record and normalizes raw server
// payloads into it.
package task

import (
	"strings"
	"time"
)

// Priority is a normalized task priority.
type Priority string

const (
	// PriorityNone marks a missing or unrecognized priority.
	PriorityNone   Priority = ""
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// ParsePriority matches s case-insensitively against the known priorities.
func ParsePriority(s string) (Priority, bool) {
	switch Priority(strings.ToLower(strings.TrimSpace(s))) {
	case PriorityLow:
		return PriorityLow, true
	case PriorityMedium:
		return PriorityMedium, true
	case PriorityHigh:
		return PriorityHigh, true
	default:
		return PriorityNone, false
	}
}

// IsValid reports whether p is one of low, medium or high.
func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	default:
		return false
	}
}

// DateLayout is the calendar date layout used for due dates.
const DateLayout = "2006-01-02"

// Task is a canonical task record.
type Task struct {
	ID          string
	Title       string
	Description string
	Priority    Priority
	// Due is a calendar date at midnight UTC, nil when absent.
	Due       *time.Time
	Completed bool
}

// HasDue reports whether the task has a due date.
func (t Task) HasDue() bool {
	return t.Due != nil
}

// DueString returns the due date as YYYY-MM-DD, or "" when absent.
func (t Task) DueString() string {
	if t.Due == nil {
		return ""
	}
	return t.Due.Format(DateLayout)
}

// Date truncates t to its calendar day, expressed as midnight UTC.
// The day is taken in t's own location.
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
