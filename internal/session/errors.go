package session

import "errors"

var (
	// ErrDuplicateID is returned when creating a session with an explicit
	// identifier that already exists in the store.
	ErrDuplicateID = errors.New("session id already exists")

	// ErrEmptyID is returned when an operation receives an empty session
	// identifier.
	ErrEmptyID = errors.New("session id is empty")
)
