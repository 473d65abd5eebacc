// Package session persists the authenticated identity and credential pair.
package session

import "strings"

// Session is the credential and identity pair governing gateway access.
type Session struct {
	Token  string `json:"token"`
	UserID string `json:"userId"`
}

// Valid reports whether both fields are present.
func (s Session) Valid() bool {
	return strings.TrimSpace(s.Token) != "" && strings.TrimSpace(s.UserID) != ""
}

// Store is the storage boundary for the current session.
// Implementations perform no network or UI side effects.
type Store interface {
	// Load returns the persisted session, or false if either field is
	// missing or the stored data is malformed.
	Load() (Session, bool)

	// Save persists both fields so that no reader observes one without the other.
	Save(s Session) error

	// Clear removes both fields. Clearing an empty store is not an error.
	Clear() error
}
