package service

import "errors"

// Service errors.
var (
	// ErrNotStarted is returned when an operation requires a started
	// service.
	ErrNotStarted = errors.New("service not started")

	// ErrInvalidAdjustment is returned when a podium adjustment event
	// is malformed.
	ErrInvalidAdjustment = errors.New("invalid podium adjustment")
)
