package git

import "errors"

// Repository errors
var (
	ErrNotRepository = errors.New("folder is not inside a git repository")
	ErrNoHead        = errors.New("repository has no commits yet")
)

// Revision errors
var (
	ErrUnknownBase = errors.New("failed to resolve base revision")
)
