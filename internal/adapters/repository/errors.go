package repository

import "errors"

// Sentinel kinds for standings snapshot errors.
var (
	ErrNotFound = errors.New("division not found")
)
