package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestError_IsMatchesKind(t *testing.T) {
	err := fmt.Errorf("fetch tasks: %w", Unauthorized("token expired"))
	if !errors.Is(err, ErrUnauthorized) {
		t.Error("expected ErrUnauthorized")
	}
	if errors.Is(err, ErrNetwork) {
		t.Error("did not expect ErrNetwork")
	}
	if !IsUnauthorized(err) {
		t.Error("IsUnauthorized should see through wrapping")
	}
}

func TestError_UnwrapKeepsCause(t *testing.T) {
	err := WrapError(ErrNetwork, "", context.DeadlineExceeded)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Error("expected cause to be reachable")
	}
	if !errors.Is(err, ErrNetwork) {
		t.Error("expected kind to match")
	}
	if err.Error() != "network failure: context deadline exceeded" {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"gateway message", NewError(ErrAuthFailed, "Invalid credentials"), "Invalid credentials"},
		{"wrapped gateway message", fmt.Errorf("login: %w", NewError(ErrAuthFailed, "User exists")), "User exists"},
		{"blank message", NewError(ErrAuthFailed, "  "), "login failed"},
		{"plain error", errors.New("boom"), "login failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Message(tt.err, "login failed"); got != tt.want {
				t.Errorf("Message() = %q, want %q", got, tt.want)
			}
		})
	}
}
