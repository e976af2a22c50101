package event

import "github.com/google/uuid"

// ID identifies one event. IDs are UUIDv7 strings: globally unique,
// monotonic within a process, and lexicographically time-sortable, so
// comparing IDs as strings agrees with creation order.
type ID string

// NewID returns a fresh time-sortable event id.
func NewID() ID {
	return ID(uuid.Must(uuid.NewV7()).String())
}
