package main

import (
	"context"
	"errors"
	"os"

	"github.com/alnah/go-md2html"
	"github.com/alnah/go-md2html/internal/config"
	"github.com/alnah/go-md2html/internal/logging"
)

// Exit codes for the md2html CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess     = 0   // Command completed
	ExitGeneral     = 1   // General/unexpected error, conversion errors
	ExitUsage       = 2   // Invalid arguments, flags or config
	ExitIO          = 3   // Unreadable input or CSS, unwritable output or session
	ExitInterrupted = 130 // Run stopped by a signal
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	if errors.Is(err, md2html.ErrCanceled) || errors.Is(err, context.Canceled) {
		return ExitInterrupted
	}

	// Usage/config errors (exit 2)
	if errors.Is(err, ErrUsage) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, logging.ErrInvalidLevel) ||
		errors.Is(err, md2html.ErrEmptyPath) ||
		errors.Is(err, md2html.ErrStyleNotFound) ||
		errors.Is(err, md2html.ErrInvalidAssetPath) {
		return ExitUsage
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, md2html.ErrInputRead) ||
		errors.Is(err, md2html.ErrCSSRead) ||
		errors.Is(err, md2html.ErrOutputWrite) ||
		errors.Is(err, md2html.ErrPersistence) {
		return ExitIO
	}

	return ExitGeneral
}
