package lifecycle

import (
	"errors"

	"taskflow/internal/service"
	"taskflow/internal/task"
)

// State is the controller's session state.
type State int

const (
	Unauthenticated State = iota
	Authenticating
	Authenticated
	SessionExpiring
)

func (s State) String() string {
	switch s {
	case Unauthenticated:
		return "unauthenticated"
	case Authenticating:
		return "authenticating"
	case Authenticated:
		return "authenticated"
	case SessionExpiring:
		return "session-expiring"
	default:
		return "unknown"
	}
}

// Reason says why a session ended.
type Reason int

const (
	ReasonUserLogout Reason = iota
	ReasonUnauthorized
)

func (r Reason) String() string {
	if r == ReasonUnauthorized {
		return "unauthorized"
	}
	return "logout"
}

// Event is delivered to subscribers.
type Event interface {
	event()
}

// EventSessionEstablished follows a successful login.
type EventSessionEstablished struct {
	User service.User
}

// EventLoggedOut follows the end of a session.
type EventLoggedOut struct {
	Reason Reason
}

// EventTasksRefreshed follows a committed refresh. Tasks is a copy.
type EventTasksRefreshed struct {
	Tasks []task.Task
}

func (EventSessionEstablished) event() {}
func (EventLoggedOut) event()          {}
func (EventTasksRefreshed) event()     {}

var (
	// ErrLoginInProgress rejects a login while another is pending.
	ErrLoginInProgress = errors.New("login already in progress")

	// ErrRefreshInProgress rejects a refresh while another is pending.
	ErrRefreshInProgress = errors.New("refresh already in progress")

	// ErrSessionEnded is returned for a result that arrived after its
	// session ended. The result is discarded.
	ErrSessionEnded = errors.New("session ended")

	// ErrNotAuthenticated is returned by operations that need a session.
	ErrNotAuthenticated = errors.New("not logged in")
)
