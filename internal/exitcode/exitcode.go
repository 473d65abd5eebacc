// Package exitcode defines exit codes for the CLI.
package exitcode

// Exit codes returned by every command.
const (
	// Success indicates successful completion.
	Success = 0

	// UserError indicates invalid input: bad arguments or flags, a task
	// reference that matches nothing, or a validation failure.
	UserError = 1

	// AuthError indicates a missing, expired or rejected session, or
	// rejected credentials.
	AuthError = 2

	// BackendError indicates a network failure or an error reported by the
	// task service.
	BackendError = 3
)
