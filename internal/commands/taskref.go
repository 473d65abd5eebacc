package commands

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"taskflow/internal/lifecycle"
	"taskflow/internal/task"
)

// TaskRef represents a parsed task reference.
type TaskRef struct {
	Num int    // 1-based position in the full listing, 0 if ID is set
	ID  string // task ID, empty if Num is set
}

var (
	// ErrTaskRefRequired indicates no task reference was provided.
	ErrTaskRefRequired = errors.New("task reference required")

	// ErrTaskNotFound indicates the reference matched no task.
	ErrTaskNotFound = errors.New("task not found")
)

// ParseTaskRef parses a task reference from args.
//
// An all-digit argument is a position in the full listing as printed by
// list. Anything else is taken as a task ID. Exactly one argument is
// accepted.
func ParseTaskRef(args []string) (TaskRef, error) {
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		return TaskRef{}, ErrTaskRefRequired
	}
	if len(args) > 1 {
		return TaskRef{}, fmt.Errorf("invalid task reference: %s", strings.Join(args, " "))
	}

	arg := strings.TrimSpace(args[0])
	if isAllDigits(arg) {
		num, err := strconv.Atoi(arg)
		if err != nil || num < 1 {
			return TaskRef{}, fmt.Errorf("task number out of range: %s", arg)
		}
		return TaskRef{Num: num}, nil
	}
	if strings.HasPrefix(arg, "-") {
		return TaskRef{}, fmt.Errorf("invalid task reference: %s", arg)
	}
	return TaskRef{ID: arg}, nil
}

// String returns the reference as typed.
func (r TaskRef) String() string {
	if r.ID != "" {
		return r.ID
	}
	return strconv.Itoa(r.Num)
}

// Find returns the referenced task in tasks.
func (r TaskRef) Find(tasks []task.Task) (task.Task, error) {
	if r.ID == "" {
		if r.Num < 1 || r.Num > len(tasks) {
			return task.Task{}, fmt.Errorf("task number out of range: %d", r.Num)
		}
		return tasks[r.Num-1], nil
	}
	for _, t := range tasks {
		if t.ID == r.ID {
			return t, nil
		}
	}
	return task.Task{}, fmt.Errorf("%w: %s", ErrTaskNotFound, r.ID)
}

// resolveTask refreshes the collection and looks up the referenced task.
// Lookup failures are returned as refErr so callers can report them as
// user errors; everything else comes back as err.
func resolveTask(ctx context.Context, ctl *lifecycle.Controller, args []string) (t task.Task, refErr, err error) {
	ref, refErr := ParseTaskRef(args)
	if refErr != nil {
		return task.Task{}, refErr, nil
	}
	tasks, err := ctl.Refresh(ctx)
	if err != nil {
		return task.Task{}, nil, err
	}
	t, refErr = ref.Find(tasks)
	if refErr == nil && t.ID == "" {
		refErr = fmt.Errorf("task %s has no id", ref)
	}
	return t, refErr, nil
}

// isAllDigits returns true if s consists only of ASCII digits and is non-empty.
func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r > unicode.MaxASCII || !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
