package store

import "errors"

// ErrNotFound is returned when a resource or row does not exist.
var ErrNotFound = errors.New("not found")
