package secretary

import "errors"

var (
	// ErrSessionNotFound is returned when a session id is unknown or expired.
	ErrSessionNotFound = errors.New("secretary: session not found")

	// ErrMessageRequired is returned for blank chat messages.
	ErrMessageRequired = errors.New("secretary: message is required")

	// ErrMessageTooLong is returned for messages over MaxMessageLength runes.
	ErrMessageTooLong = errors.New("secretary: message is too long")
)
