package repository

import "errors"

// ErrNotFound is wrapped by repositories when a lookup matches no row.
// Services test for it with errors.Is to map lookups to 404s.
var ErrNotFound = errors.New("not found")
