package commands

import (
	"errors"
	"fmt"
	"io"

	"taskflow/internal/exitcode"
	"taskflow/internal/lifecycle"
	"taskflow/internal/service"
)

const (
	msgNotLoggedIn    = "not logged in (run: taskflow login)"
	msgSessionExpired = "session expired, please log in again"
	msgNetwork        = "network error"
)

// report prints err to errOut and returns the matching exit code.
// fallback is shown when the error carries no message of its own.
func report(errOut io.Writer, err error, fallback string) int {
	if fallback == "" {
		fallback = err.Error()
	}
	switch {
	case errors.Is(err, lifecycle.ErrNotAuthenticated):
		fmt.Fprintf(errOut, "error: %s\n", msgNotLoggedIn)
		return exitcode.AuthError
	case errors.Is(err, service.ErrValidation):
		fmt.Fprintf(errOut, "error: %s\n", service.Message(err, fallback))
		return exitcode.UserError
	case service.IsUnauthorized(err), errors.Is(err, lifecycle.ErrSessionEnded):
		fmt.Fprintf(errOut, "error: %s\n", msgSessionExpired)
		return exitcode.AuthError
	case errors.Is(err, service.ErrAuthFailed):
		fmt.Fprintf(errOut, "error: %s\n", service.Message(err, fallback))
		return exitcode.AuthError
	case errors.Is(err, service.ErrNetwork):
		fmt.Fprintf(errOut, "error: %s (try again)\n", service.Message(err, msgNetwork))
		return exitcode.BackendError
	case errors.Is(err, service.ErrUnsupported),
		errors.Is(err, lifecycle.ErrLoginInProgress),
		errors.Is(err, lifecycle.ErrRefreshInProgress):
		fmt.Fprintf(errOut, "error: %s\n", err)
		return exitcode.UserError
	default:
		fmt.Fprintf(errOut, "error: %s\n", service.Message(err, fallback))
		return exitcode.BackendError
	}
}

// userError prints a plain usage problem.
func userError(errOut io.Writer, format string, args ...any) int {
	fmt.Fprintf(errOut, "error: "+format+"\n", args...)
	return exitcode.UserError
}

// acknowledge prints the success acknowledgement unless quiet.
func acknowledge(out io.Writer, quiet bool) int {
	if !quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
