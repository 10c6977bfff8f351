package core

import "errors"

// ErrNotFound is returned when a record does not exist or the caller is
// not allowed to know whether it exists.
var ErrNotFound = errors.New("record not found")

// ErrPermission is returned when the caller can see the record but lacks
// the capability for the operation (e.g. a read-only viewer editing).
var ErrPermission = errors.New("permission denied")

// ErrUsernameTaken is returned when registering a duplicate username.
var ErrUsernameTaken = errors.New("username already taken")
