package repository

import "errors"

// ErrNotFound is returned when a referenced entity is absent or not owned by
// the caller. Handlers map it to 404.
var ErrNotFound = errors.New("not found")
