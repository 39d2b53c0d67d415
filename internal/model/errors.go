package model

import "errors"

// ErrNotFound is returned by repositories for an unknown id, slug or username
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when a unique column already holds the value
var ErrDuplicate = errors.New("duplicate")
