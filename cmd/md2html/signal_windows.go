//go:build windows

package main

import (
	"context"
	"os"
	"os/signal"
)

// notifyContext cancels the run context on Ctrl-C.
// Jobs already started finish; the rest are reported as skipped.
func notifyContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt)
}
