// Package service defines the backend-agnostic gateway to the task service.
package service

import "context"

// Gateway defines the interface for remote task and account operations.
// All network calls go through this interface.
// Commands and the lifecycle controller never import a backend directly.
//
// Task payloads are returned raw; callers normalize them with package task.
type Gateway interface {
	// FetchTasks returns the raw task payload for the session's user.
	FetchTasks(ctx context.Context, token string) (any, error)

	// CreateTask creates a task and returns the raw created task.
	CreateTask(ctx context.Context, token string, in TaskInput) (any, error)

	// UpdateTask updates a task by ID and returns the raw updated task.
	UpdateTask(ctx context.Context, token, id string, in TaskInput) (any, error)

	// DeleteTask deletes a task by ID.
	DeleteTask(ctx context.Context, token, id string) error

	// Login exchanges credentials for a session token and user identity.
	Login(ctx context.Context, creds Credentials) (LoginResult, error)

	// Signup registers a new account. It does not log in.
	Signup(ctx context.Context, in SignupInput) error

	// FetchCurrentUser returns the user owning token.
	FetchCurrentUser(ctx context.Context, token string) (User, error)

	// UpdateProfile changes the user's name and email.
	UpdateProfile(ctx context.Context, token string, in ProfileInput) (User, error)

	// ChangePassword replaces the user's password.
	ChangePassword(ctx context.Context, token, current, next string) error
}
