package validation

import (
	"errors"
	"testing"

	"taskflow/internal/service"
)

func TestTaskCreate(t *testing.T) {
	tests := []struct {
		name    string
		in      service.TaskInput
		wantMsg string
	}{
		{"minimal", service.TaskInput{Title: service.String("Buy milk")}, ""},
		{"full", service.TaskInput{
			Title:       service.String("Report"),
			Description: service.String("quarterly"),
			Priority:    service.String("HIGH"),
			DueDate:     service.String("2024-06-10"),
			Completed:   service.Bool(false),
		}, ""},
		{"missing title", service.TaskInput{Priority: service.String("low")}, "title required"},
		{"blank title", service.TaskInput{Title: service.String("   ")}, "title required"},
		{"bad priority", service.TaskInput{Title: service.String("x"), Priority: service.String("urgent")}, "priority must be low, medium or high"},
		{"bad date", service.TaskInput{Title: service.String("x"), DueDate: service.String("10/06/2024")}, "due date must be YYYY-MM-DD"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := TaskCreate(tt.in)
			if tt.wantMsg == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !errors.Is(err, service.ErrValidation) {
				t.Errorf("expected ErrValidation, got %v", err)
			}
			if err.Error() != tt.wantMsg {
				t.Errorf("message = %q, want %q", err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestTaskUpdate(t *testing.T) {
	if err := TaskUpdate(service.TaskInput{Completed: service.Bool(true)}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := TaskUpdate(service.TaskInput{Priority: service.String("Medium")}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	err := TaskUpdate(service.TaskInput{})
	if err == nil || err.Error() != "nothing to update" {
		t.Errorf("expected nothing to update, got %v", err)
	}
}

func TestSignup(t *testing.T) {
	ok := service.SignupInput{Name: "Ada", Email: "ada@example.com", Password: "secret"}
	if err := Signup(ok); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	bad := ok
	bad.Email = "not-an-email"
	if err := Signup(bad); err == nil || err.Error() != "a valid email is required" {
		t.Errorf("expected email error, got %v", err)
	}

	bad = ok
	bad.Name = ""
	if err := Signup(bad); err == nil || err.Error() != "name required" {
		t.Errorf("expected name error, got %v", err)
	}
}

func TestProfile(t *testing.T) {
	if err := Profile(service.ProfileInput{Name: "Ada", Email: "ada@example.com"}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := Profile(service.ProfileInput{Name: "Ada", Email: "nope"}); !errors.Is(err, service.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestCredentials(t *testing.T) {
	if err := Credentials(service.Credentials{Email: "a@b.c", Password: "x"}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := Credentials(service.Credentials{AuthCode: "code"}); err != nil {
		t.Errorf("oauth credentials should pass: %v", err)
	}
	if err := Credentials(service.Credentials{Password: "x"}); err == nil || err.Error() != "email required" {
		t.Errorf("expected email required, got %v", err)
	}
	if err := Credentials(service.Credentials{Email: "a@b.c"}); err == nil || err.Error() != "password required" {
		t.Errorf("expected password required, got %v", err)
	}
}

func TestPasswordChange(t *testing.T) {
	if err := PasswordChange("old", "new", "new"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	err := PasswordChange("old", "new", "other")
	if err == nil || err.Error() != "passwords do not match" {
		t.Errorf("expected mismatch, got %v", err)
	}
	if !errors.Is(err, service.ErrValidation) {
		t.Error("mismatch must be a validation failure")
	}
	if err := PasswordChange("", "new", "new"); err == nil {
		t.Error("expected current password required")
	}
}
