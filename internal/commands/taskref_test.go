package commands

import (
	"errors"
	"testing"

	"taskflow/internal/task"
)

func TestParseTaskRef(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    TaskRef
		wantErr string
	}{
		{"number", []string{"5"}, TaskRef{Num: 5}, ""},
		{"multi digit", []string{"12"}, TaskRef{Num: 12}, ""},
		{"id", []string{"64f1c0ffee"}, TaskRef{ID: "64f1c0ffee"}, ""},
		{"padded", []string{" 3 "}, TaskRef{Num: 3}, ""},
		{"zero", []string{"0"}, TaskRef{}, "task number out of range: 0"},
		{"flag-like", []string{"-1"}, TaskRef{}, "invalid task reference: -1"},
		{"separated", []string{"a", "3"}, TaskRef{}, "invalid task reference: a 3"},
		{"blank", []string{" "}, TaskRef{}, "task reference required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref, err := ParseTaskRef(tt.args)
			if tt.wantErr != "" {
				if err == nil || err.Error() != tt.wantErr {
					t.Fatalf("expected error %q, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if ref != tt.want {
				t.Errorf("got %+v, want %+v", ref, tt.want)
			}
		})
	}
}

func TestParseTaskRef_Empty(t *testing.T) {
	_, err := ParseTaskRef(nil)
	if !errors.Is(err, ErrTaskRefRequired) {
		t.Errorf("expected ErrTaskRefRequired, got %v", err)
	}
}

func TestTaskRef_Find(t *testing.T) {
	tasks := []task.Task{{ID: "a"}, {ID: "b"}, {ID: "c"}}

	got, err := TaskRef{Num: 2}.Find(tasks)
	if err != nil || got.ID != "b" {
		t.Errorf("Num 2: got %+v, %v", got, err)
	}
	got, err = TaskRef{ID: "c"}.Find(tasks)
	if err != nil || got.ID != "c" {
		t.Errorf("ID c: got %+v, %v", got, err)
	}
	if _, err := (TaskRef{Num: 4}).Find(tasks); err == nil || err.Error() != "task number out of range: 4" {
		t.Errorf("expected out of range, got %v", err)
	}
	if _, err := (TaskRef{ID: "z"}).Find(tasks); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("expected ErrTaskNotFound, got %v", err)
	}
}

func TestTaskRef_String(t *testing.T) {
	if s := (TaskRef{Num: 7}).String(); s != "7" {
		t.Errorf("got %q", s)
	}
	if s := (TaskRef{ID: "x1"}).String(); s != "x1" {
		t.Errorf("got %q", s)
	}
}
