package md2html

import "errors"

// Sentinel errors for library operations.
var (
	// Per-job failures, mirrored by Result.Status.
	ErrInputRead   = errors.New("failed to read input")
	ErrCSSRead     = errors.New("failed to read CSS")
	ErrConversion  = errors.New("HTML conversion failed")
	ErrOutputWrite = errors.New("failed to write output")
	ErrCanceled    = errors.New("run canceled")

	// Session state errors.
	ErrPersistence   = errors.New("failed to save session")
	ErrStateNotFound = errors.New("session state not found")
	ErrStateCorrupt  = errors.New("session state is corrupt")
	ErrStateLocked   = errors.New("session file exists but could not be read")
	ErrMissingJobID  = errors.New("job has no id")

	// Argument errors.
	ErrEmptyPath = errors.New("path cannot be empty")

	// Asset loading errors.
	ErrStyleNotFound    = errors.New("style not found")
	ErrInvalidAssetPath = errors.New("invalid asset path")
)
