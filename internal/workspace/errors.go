package workspace

import "errors"

// Sentinel errors returned by workspace operations. Callers distinguish
// recoverable tool failures from sandbox violations with errors.Is.
var (
	// ErrNotFound indicates the requested file or directory does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAccessDenied indicates the path escapes the workspace sandbox.
	ErrAccessDenied = errors.New("access denied")

	// ErrIsDirectory indicates a file operation was attempted on a directory.
	ErrIsDirectory = errors.New("is a directory")
)
