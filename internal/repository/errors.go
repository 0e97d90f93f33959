package repository

import "errors"

// ErrNotFound is returned when a requested workspace does not exist.
var ErrNotFound = errors.New("not found")

// ErrClosed is returned by every operation after Close.
var ErrClosed = errors.New("repository closed")
