package session

import "errors"

// Controller errors. Each is paired with a user-facing message.
var (
	ErrAlreadyActive   = errors.New("session already active")
	ErrEmptySelection  = errors.New("no apps selected")
	ErrNoActiveSession = errors.New("no active session")
	ErrInvalidDuration = errors.New("focus and break minutes must be positive")
)

const (
	MessageStarted         = "Session started successfully"
	MessageStopped         = "Session stopped"
	MessageAlreadyActive   = "Session already active"
	MessageEmptySelection  = "Select at least one app to start session"
	MessageNoActiveSession = "No active session"
	MessageInvalidDuration = "Focus and break minutes must be greater than zero"
)
