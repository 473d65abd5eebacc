package output

import (
	"bytes"
	"testing"
	"time"

	"taskflow/internal/service"
	"taskflow/internal/stats"
	"taskflow/internal/task"
	"taskflow/internal/testutil"
)

func due(s string) *time.Time {
	d, _ := time.Parse(task.DateLayout, s)
	return &d
}

func sampleTasks() []task.Task {
	return []task.Task{
		{ID: "1", Title: "Buy milk", Priority: task.PriorityHigh, Due: due("2024-06-10")},
		{ID: "2", Title: "Call\nmom", Completed: true},
		{ID: "3", Title: "   ", Priority: task.PriorityLow},
		{ID: "4", Title: "Report", Due: due("2024-06-14")},
	}
}

func TestFormatTask(t *testing.T) {
	var buf bytes.Buffer
	FormatHeader(&buf, "All Tasks", 4)
	for i, tk := range sampleTasks() {
		FormatTask(&buf, i+1, tk)
	}
	testutil.GoldenString(t, "tasks", buf.String())
}

func TestFormatStats(t *testing.T) {
	var buf bytes.Buffer
	FormatStats(&buf, stats.Compute(sampleTasks()))
	testutil.GoldenString(t, "stats", buf.String())
}

func TestFormatTaskDetail(t *testing.T) {
	var buf bytes.Buffer
	FormatTaskDetail(&buf, task.Task{ID: "9", Title: "Report", Description: "Q3\nnumbers", Priority: task.PriorityMedium, Due: due("2024-06-14")})
	want := "id:          9\n" +
		"title:       Report\n" +
		"description: Q3 numbers\n" +
		"priority:    medium\n" +
		"due:         2024-06-14\n" +
		"status:      pending\n"
	if buf.String() != want {
		t.Errorf("got:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestFormatUser(t *testing.T) {
	var buf bytes.Buffer
	FormatUser(&buf, service.User{ID: "u1", Email: "ada@example.com"})
	want := "id:    u1\nemail: ada@example.com\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}

func TestNormalizeTitle(t *testing.T) {
	tests := map[string]string{
		"":       "(untitled)",
		"  \n ":  "(untitled)",
		"a\r\nb": "a  b",
		"plain":  "plain",
	}
	for in, want := range tests {
		if got := normalizeTitle(in); got != want {
			t.Errorf("normalizeTitle(%q) = %q, want %q", in, got, want)
		}
	}
}
