package service

import (
	"errors"
	"strings"
)

// Error kinds. Match them with errors.Is.
var (
	// ErrValidation marks malformed local input. It never changes state.
	ErrValidation = errors.New("validation failed")

	// ErrUnauthorized marks a credential rejected by the gateway.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNetwork marks a transient transport failure or timeout.
	ErrNetwork = errors.New("network failure")

	// ErrAuthFailed marks a rejected login or signup.
	ErrAuthFailed = errors.New("authentication failed")

	// ErrFailure marks any other gateway-reported failure.
	ErrFailure = errors.New("request failed")

	// ErrUnsupported marks an operation the backend does not offer.
	ErrUnsupported = errors.New("operation not supported")
)

// Error is a classified failure with an optional user-visible message.
type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Message != "":
		return e.Message
	case e.Err != nil:
		return e.Kind.Error() + ": " + e.Err.Error()
	default:
		return e.Kind.Error()
	}
}

// Is reports whether target is the error's kind.
func (e *Error) Is(target error) bool {
	return target == e.Kind
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError returns an error of kind with message.
func NewError(kind error, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// WrapError classifies err as kind, keeping it as the cause.
func WrapError(kind error, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// Validation returns an ErrValidation error with message.
func Validation(message string) *Error {
	return NewError(ErrValidation, message)
}

// Unauthorized returns an ErrUnauthorized error with message.
func Unauthorized(message string) *Error {
	return NewError(ErrUnauthorized, message)
}

// IsUnauthorized reports whether err is an ErrUnauthorized error.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// Message returns the user-visible message for err: the gateway's own
// message when one was provided, fallback otherwise.
func Message(err error, fallback string) string {
	var e *Error
	if errors.As(err, &e) && strings.TrimSpace(e.Message) != "" {
		return e.Message
	}
	return fallback
}
