package eventstore

import "errors"

// Sentinel kinds for event store errors.
var (
	ErrDuplicateEvent = errors.New("duplicate event id")
	ErrClosed         = errors.New("event store closed")
)
