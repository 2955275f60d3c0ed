package repositories

import "errors"

// Sentinel errors shared by every repository. Handlers translate them onto the
// HTTP error taxonomy (404 and 409 respectively).
var (
	ErrNotFound = errors.New("record not found")
	ErrConflict = errors.New("record conflict")
)
