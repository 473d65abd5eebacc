// Package stats derives aggregate counts from a task collection.
package stats

import "taskflow/internal/task"

// Stats summarizes a task collection. It is always derived, never stored.
type Stats struct {
	Total                int
	Completed            int
	Pending              int
	CompletionPercentage int
	Low                  int
	Medium               int
	High                 int
}

// Compute derives Stats in a single pass.
// Tasks without a recognized priority count toward Total only.
func Compute(tasks []task.Task) Stats {
	var s Stats
	for _, t := range tasks {
		s.Total++
		if t.Completed {
			s.Completed++
		}
		switch t.Priority {
		case task.PriorityLow:
			s.Low++
		case task.PriorityMedium:
			s.Medium++
		case task.PriorityHigh:
			s.High++
		}
	}
	s.Pending = s.Total - s.Completed
	s.CompletionPercentage = percentage(s.Completed, s.Total)
	return s
}

// percentage rounds part/total*100 half up; 0 when total is 0.
func percentage(part, total int) int {
	if total == 0 {
		return 0
	}
	return (part*200 + total) / (2 * total)
}
